package email

import "fmt"

func VerificationEmailTemplate(name, link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Verify your email address</h2>
  <p>Hi %s,</p>
  <p>Thanks for signing up. Click the button below to verify your email address. The link expires in one hour.</p>
  <p><a href="%s" style="display:inline-block;padding:10px 20px;background:#2563eb;color:#fff;text-decoration:none;border-radius:4px;">Verify Email</a></p>
  <p>If the button does not work, copy this link into your browser:<br>%s</p>
  <p>If you did not create an account, you can safely ignore this email.</p>
</body>
</html>`, name, link, link)
}

func PasswordResetEmailTemplate(name, link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Reset your password</h2>
  <p>Hi %s,</p>
  <p>We received a request to reset your password. Click the button below to choose a new one. The link expires in 10 minutes.</p>
  <p><a href="%s" style="display:inline-block;padding:10px 20px;background:#2563eb;color:#fff;text-decoration:none;border-radius:4px;">Reset Password</a></p>
  <p>If the button does not work, copy this link into your browser:<br>%s</p>
  <p>If you did not request a reset, you can safely ignore this email.</p>
</body>
</html>`, name, link, link)
}

func MagicLinkEmailTemplate(name, link string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Your login link</h2>
  <p>Hi %s,</p>
  <p>Click the button below to sign in. The link expires in 10 minutes and can be used once.</p>
  <p><a href="%s" style="display:inline-block;padding:10px 20px;background:#2563eb;color:#fff;text-decoration:none;border-radius:4px;">Sign In</a></p>
  <p>If the button does not work, copy this link into your browser:<br>%s</p>
  <p>If you did not request this link, you can safely ignore this email.</p>
</body>
</html>`, name, link, link)
}
