package services

import (
	"bytes"
	"fmt"
	"html/template"
)

type otpEmail struct {
	Heading  string
	UserName string
	Intro    string
	OTP      string
	Outro    string
}

var otpEmailTemplate = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0;">
    <h1 style="margin: 0; font-size: 28px;">Taskyn</h1>
    <p style="margin: 10px 0 0 0; opacity: 0.9;">AI-Based Skill Testing Platform</p>
  </div>
  <div style="background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px;">
    <h2 style="color: #333; margin-bottom: 20px;">{{.Heading}}</h2>
    <p style="color: #666; line-height: 1.6; margin-bottom: 25px;">Hi {{.UserName}},<br><br>{{.Intro}}</p>
    <div style="background: #fff; border: 2px solid #667eea; border-radius: 8px; padding: 20px; text-align: center; margin: 25px 0;">
      <h1 style="color: #667eea; font-size: 32px; margin: 0; letter-spacing: 5px; font-weight: bold;">{{.OTP}}</h1>
    </div>
    <p style="color: #666; line-height: 1.6; margin-bottom: 20px;">This OTP will expire in <strong>10 minutes</strong>. {{.Outro}}</p>
    <div style="text-align: center; margin-top: 30px;">
      <p style="color: #999; font-size: 14px;">Best regards,<br>The Taskyn Team</p>
    </div>
  </div>
</div>`))

func otpEmailFor(purpose otpPurpose, name, code string) (subject, text, html string, err error) {
	data := otpEmail{UserName: name, OTP: code}
	switch purpose {
	case purposeEmailVerification:
		subject = "Verify your Taskyn email"
		data.Heading = "Email Verification"
		data.Intro = "Thank you for registering with Taskyn! To complete your registration, please verify your email address by entering the following OTP:"
		data.Outro = "If you didn't request this verification, please ignore this email."
	case purposePasswordReset:
		subject = "Reset your Taskyn password"
		data.Heading = "Password Reset"
		data.Intro = "We received a request to reset your password. Use the following OTP to complete the password reset process:"
		data.Outro = "If you didn't request a password reset, please ignore this email and your password will remain unchanged."
	default:
		return "", "", "", fmt.Errorf("unknown otp purpose %q", purpose)
	}

	var buf bytes.Buffer
	if err := otpEmailTemplate.Execute(&buf, data); err != nil {
		return "", "", "", err
	}
	text = fmt.Sprintf("Hi %s,\n\n%s\n\n%s\n\nThis OTP will expire in 10 minutes. %s\n\nThe Taskyn Team\n",
		name, data.Intro, code, data.Outro)
	return subject, text, buf.String(), nil
}
