package domain

// OtpPurpose tags the context an OTP was issued for. A code minted for one
// purpose never satisfies a challenge for another.
type OtpPurpose string

const (
	OtpPurposeRegister OtpPurpose = "register"
	OtpPurposeLogin    OtpPurpose = "login"
)

func ParseOtpPurpose(s string) (OtpPurpose, bool) {
	switch OtpPurpose(s) {
	case OtpPurposeRegister, OtpPurposeLogin:
		return OtpPurpose(s), true
	case "":
		return OtpPurposeRegister, true // legacy clients omit the field
	}
	return "", false
}
