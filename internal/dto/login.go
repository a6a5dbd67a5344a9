package dto

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOtpRequest struct {
	Email   string `json:"email"`
	Otp     string `json:"otp"`
	Purpose string `json:"purpose,omitempty"`
}

type ResendOtpRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose,omitempty"`
}

type OtpSentResponse struct {
	Message string `json:"message"`
}
