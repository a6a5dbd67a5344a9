package http

import (
	"net/http"
	"strings"

	"assettrack/internal/dto"
	"assettrack/internal/netutil"
	"assettrack/internal/service"
)

type authHandlers struct {
	auth service.AuthService
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// XFF can be a list: client, proxy1, proxy2...
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if normalized, ok := netutil.NormalizeIP(ip); ok {
			return normalized
		}
	}
	if normalized, ok := netutil.NormalizeIP(r.RemoteAddr); ok {
		return normalized
	}
	return r.RemoteAddr
}

func (h *authHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Register(r.Context(), req, clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *authHandlers) verifyOtp(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOtpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.VerifyOtp(r.Context(), req, clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *authHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tokens, otpSent, err := h.auth.Login(r.Context(), req, clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if otpSent != nil {
		writeJSON(w, http.StatusOK, otpSent)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *authHandlers) resendOtp(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendOtpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.ResendOtp(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
