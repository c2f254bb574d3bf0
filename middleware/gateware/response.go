package gateware

import (
	"strings"

	"github.com/goliatone/go-router"
)

// RejectionBody is the JSON shape returned on every deny. Clients depend on
// these exact fields.
type RejectionBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// Deny reasons, stable strings shared with the validator failure kinds.
const (
	ReasonMissingToken         = "missing_token"
	ReasonValidatorUnavailable = "validation_unavailable"
	ReasonTokenExpired         = "token_expired"
	ReasonTokenMalformed       = "token_malformed"
	ReasonInvalidSignature     = "invalid_signature"
	ReasonInsufficientRole     = "insufficient_role"
)

// DefaultLocale is used when the request carries no recognized language.
const DefaultLocale = "en"

var messageCatalog = map[string]map[string]string{
	"en": {
		ReasonMissingToken:         "No authorization header",
		ReasonValidatorUnavailable: "Authentication service unavailable",
		ReasonTokenExpired:         "Authentication token expired",
		ReasonTokenMalformed:       "Invalid authentication token",
		ReasonInvalidSignature:     "Invalid authentication token",
		ReasonInsufficientRole:     "Insufficient privileges",
	},
	"vi": {
		ReasonMissingToken:         "Thiếu thông tin xác thực",
		ReasonValidatorUnavailable: "Dịch vụ xác thực không khả dụng",
		ReasonTokenExpired:         "Phiên đăng nhập đã hết hạn",
		ReasonTokenMalformed:       "Thông tin xác thực không hợp lệ",
		ReasonInvalidSignature:     "Thông tin xác thực không hợp lệ",
		ReasonInsufficientRole:     "Không đủ quyền truy cập",
	},
}

// localizedMessage resolves the client-facing message for a deny reason.
// Unknown locales and unknown reasons degrade to English and to the reason
// string itself.
func localizedMessage(locale, reason string) string {
	if msgs, ok := messageCatalog[locale]; ok {
		if msg, ok := msgs[reason]; ok {
			return msg
		}
	}
	if msg, ok := messageCatalog[DefaultLocale][reason]; ok {
		return msg
	}
	return reason
}

// requestLocale picks the primary Accept-Language subtag.
func requestLocale(c router.Context) string {
	accept := c.GetString("Accept-Language", "")
	if accept == "" {
		return DefaultLocale
	}

	primary := strings.TrimSpace(strings.Split(accept, ",")[0])
	if i := strings.IndexAny(primary, "-_;"); i > 0 {
		primary = primary[:i]
	}
	primary = strings.ToLower(primary)

	if _, ok := messageCatalog[primary]; ok {
		return primary
	}
	return DefaultLocale
}

func statusText(status int) string {
	switch status {
	case router.StatusForbidden:
		return "Forbidden"
	default:
		return "Unauthorized"
	}
}
