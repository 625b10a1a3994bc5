package smtpmail

import (
	"bytes"
	"html/template"
	"time"
)

type otpMailData struct {
	AppName       string
	Code          string
	ExpiryMinutes int
}

var otpMailTmpl = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
  </head>
  <body style="margin: 0; padding: 0; background-color: #1f3f5b; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;">
    <table width="100%" cellpadding="0" cellspacing="0" style="background-color: #1f3f5b; padding: 40px 0;">
      <tr>
        <td align="center">
          <table width="600" cellpadding="0" cellspacing="0" style="background-color: #121218; border-radius: 12px; border: 1px solid #27272a;">
            <tr>
              <td style="padding: 40px 40px 30px 40px; text-align: center; background: linear-gradient(135deg, #2c5a80 0%, #4489c8 100%); border-radius: 12px 12px 0 0;">
                <h1 style="margin: 0; color: #ffffff; font-size: 32px; font-weight: 700;">{{.AppName}}</h1>
              </td>
            </tr>
            <tr>
              <td style="padding: 40px;">
                <h2 style="margin: 0 0 20px 0; color: #fafafa; font-size: 24px; font-weight: 600;">Verification Code</h2>
                <p style="margin: 0 0 30px 0; color: #a1a1aa; font-size: 16px; line-height: 1.6;">
                  Your one-time password (OTP) for <strong>{{.AppName}}</strong> is:
                </p>
                <table width="100%" cellpadding="0" cellspacing="0" style="margin: 0 0 30px 0;">
                  <tr>
                    <td align="center" style="background-color: rgba(68, 137, 200, 0.1); border: 2px dashed #4489c8; border-radius: 12px; padding: 30px;">
                      <span style="font-size: 42px; font-weight: 800; color: #4489c8; letter-spacing: 12px; font-family: 'SF Mono', 'Fira Code', monospace;">{{.Code}}</span>
                    </td>
                  </tr>
                </table>
                <p style="margin: 0 0 25px 0; color: #a1a1aa; font-size: 14px; line-height: 1.6;">
                  This code will expire in <strong style="color: #4489c8;">{{.ExpiryMinutes}} minutes</strong>. Please do not share it with anyone.
                </p>
                <div style="height: 1px; background-color: #27272a; margin-bottom: 25px;"></div>
                <p style="margin: 0; color: #71717a; font-size: 13px; line-height: 1.6; font-style: italic;">
                  If you didn't request this code, you can safely ignore this email.
                </p>
              </td>
            </tr>
            <tr>
              <td style="padding: 30px 40px; background-color: rgba(255, 255, 255, 0.02); border-top: 1px solid #27272a; border-radius: 0 0 12px 12px; text-align: center;">
                <p style="margin: 0; color: #71717a; font-size: 12px; text-transform: uppercase; letter-spacing: 1px;">
                  Advanced Sentiment Analysis Platform
                </p>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`))

func renderOTPMail(appName, code string, ttl time.Duration) ([]byte, error) {
	var buf bytes.Buffer
	err := otpMailTmpl.Execute(&buf, otpMailData{
		AppName:       appName,
		Code:          code,
		ExpiryMinutes: int(ttl.Minutes()),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
