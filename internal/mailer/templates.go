package mailer

import "html/template"

var magicLinkTemplate = template.Must(template.New("magic-link").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Sign in to More Minutes</title>
  <style>
    body { font-family: 'Inter', Arial, sans-serif; background-color: #000; color: #fff; margin: 0; padding: 40px; }
    .container { max-width: 600px; margin: 0 auto; background-color: #111; padding: 40px; border-radius: 8px; }
    .button { display: inline-block; background-color: #E50914; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: bold; margin: 20px 0; }
    .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #333; font-size: 14px; color: #999; }
  </style>
</head>
<body>
  <div class="container">
    <div style="text-align: center; margin-bottom: 30px;">
      <h1 style="color: #E50914; margin: 0;">More Minutes</h1>
      <p style="color: #999; margin: 5px 0;">Count less, live more.</p>
    </div>
    <h2>Sign in to your account</h2>
    <p>Click the button below to sign in to your More Minutes account. This link will expire in 1 hour.</p>
    <div style="text-align: center;">
      <a href="{{.Link}}" class="button">Sign In</a>
    </div>
    <p style="color: #999; font-size: 14px;">
      If the button doesn't work, copy and paste this link into your browser:<br>
      <a href="{{.Link}}" style="color: #E50914;">{{.Link}}</a>
    </p>
    <div class="footer">
      <p>This email was sent to {{.Email}}. If you didn't request this, you can safely ignore it.</p>
      <p>&copy; 2024 More Minutes. All rights reserved.</p>
    </div>
  </div>
</body>
</html>`))

var vaultDeliveryTemplate = template.Must(template.New("vault-delivery").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>A message from your Legacy Vault</title>
  <style>
    body { font-family: 'Inter', Arial, sans-serif; background-color: #000; color: #fff; margin: 0; padding: 40px; }
    .container { max-width: 600px; margin: 0 auto; background-color: #111; padding: 40px; border-radius: 8px; }
    .button { display: inline-block; background-color: #E50914; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: bold; margin: 20px 0; }
    .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #333; font-size: 14px; color: #999; }
  </style>
</head>
<body>
  <div class="container">
    <div style="text-align: center; margin-bottom: 30px;">
      <h1 style="color: #E50914; margin: 0;">More Minutes</h1>
    </div>
    <h2>A Legacy Vault message has been released</h2>
    <p>Hi {{.Name}},</p>
    <p>The message <strong>{{.FileName}}</strong> is now available. Use the link below to download it; you will need the PIN chosen when it was sealed.</p>
    <div style="text-align: center;">
      <a href="{{.Link}}" class="button">Download</a>
    </div>
    <p style="color: #999; font-size: 14px;">The link expires after seven days.</p>
    <div class="footer">
      <p>This email was sent to {{.Email}}.</p>
      <p>&copy; 2024 More Minutes. All rights reserved.</p>
    </div>
  </div>
</body>
</html>`))
