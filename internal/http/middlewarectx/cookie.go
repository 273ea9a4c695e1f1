package middlewarectx

import (
	"net/http"
	"time"
)

// CookieName имя cookie с токеном сессии.
const CookieName = "auth"

// Cookies выпускает cookie сессии с едиными атрибутами.
type Cookies struct {
	TTL      time.Duration
	Insecure bool // без флага Secure, для разработки по HTTP
}

// Session возвращает cookie с токеном. Срок жизни совпадает со сроком токена.
func (c Cookies) Session(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   !c.Insecure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Clear возвращает cookie, удаляющую сессию в браузере.
func (c Cookies) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !c.Insecure,
		SameSite: http.SameSiteStrictMode,
	}
}

// TokenFromRequest возвращает токен из cookie запроса или пустую строку.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
