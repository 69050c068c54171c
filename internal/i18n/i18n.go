// Package i18n holds the English and Hindi strings shown to shoppers.
package i18n

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

type Key string

const (
	InvalidRequest      Key = "invalid_request"
	ValidationFailed    Key = "validation_failed"
	NotFound            Key = "not_found"
	OrderNotFound       Key = "order_not_found"
	ProductNotFound     Key = "product_not_found"
	ReviewNotFound      Key = "review_not_found"
	CustomerNotFound    Key = "customer_not_found"
	EmptyCart           Key = "empty_cart"
	InvalidQuantity     Key = "invalid_quantity"
	InvalidPrice        Key = "invalid_price"
	InvalidWeight       Key = "invalid_weight"
	InvalidRating       Key = "invalid_rating"
	InvalidStatus       Key = "invalid_status"
	OrderNotPending     Key = "order_not_pending"
	PaymentFailed       Key = "payment_failed"
	PaymentVerification Key = "payment_verification"
	SimulationDisabled  Key = "simulation_disabled"
	PhoneTaken          Key = "phone_taken"
	LoginFailed         Key = "login_failed"
	Unauthorized        Key = "unauthorized"
	TooManyRequests     Key = "too_many_requests"
	Unavailable         Key = "service_unavailable"
	ChatUnavailable     Key = "chat_unavailable"
	Internal            Key = "internal"
)

var (
	Hindi   = language.Hindi
	English = language.English

	supported = []language.Tag{English, Hindi}
	matcher   = language.NewMatcher(supported)
)

var catalog = map[language.Tag]map[Key]string{
	English: {
		InvalidRequest:      "Invalid request",
		ValidationFailed:    "Please correct the highlighted fields",
		NotFound:            "Not found",
		OrderNotFound:       "Order not found",
		ProductNotFound:     "Product not found",
		ReviewNotFound:      "Review not found",
		CustomerNotFound:    "Account not found",
		EmptyCart:           "Your cart is empty",
		InvalidQuantity:     "Quantity must be at least 1",
		InvalidPrice:        "Item price is invalid",
		InvalidWeight:       "Unknown pack size",
		InvalidRating:       "Rating must be a whole number from 1 to 5",
		InvalidStatus:       "This status change is not allowed",
		OrderNotPending:     "This order has already been paid",
		PaymentFailed:       "Payment failed",
		PaymentVerification: "We could not verify your payment",
		SimulationDisabled:  "Test payments are disabled",
		PhoneTaken:          "An account with this phone number already exists",
		LoginFailed:         "No account found for this phone number",
		Unauthorized:        "Please sign in to continue",
		TooManyRequests:     "Too many requests, please slow down",
		Unavailable:         "Service temporarily unavailable, please try again",
		ChatUnavailable:     "Our assistant is unavailable right now, please try again shortly",
		Internal:            "Something went wrong, please try again",
	},
	Hindi: {
		InvalidRequest:      "अमान्य अनुरोध",
		ValidationFailed:    "कृपया चिह्नित जानकारी ठीक करें",
		NotFound:            "नहीं मिला",
		OrderNotFound:       "ऑर्डर नहीं मिला",
		ProductNotFound:     "उत्पाद नहीं मिला",
		ReviewNotFound:      "समीक्षा नहीं मिली",
		CustomerNotFound:    "खाता नहीं मिला",
		EmptyCart:           "आपकी टोकरी खाली है",
		InvalidQuantity:     "मात्रा कम से कम 1 होनी चाहिए",
		InvalidPrice:        "उत्पाद का मूल्य अमान्य है",
		InvalidWeight:       "अज्ञात पैक आकार",
		InvalidRating:       "रेटिंग 1 से 5 के बीच पूर्ण संख्या होनी चाहिए",
		InvalidStatus:       "यह स्थिति परिवर्तन मान्य नहीं है",
		OrderNotPending:     "इस ऑर्डर का भुगतान पहले ही हो चुका है",
		PaymentFailed:       "भुगतान असफल रहा",
		PaymentVerification: "हम आपके भुगतान की पुष्टि नहीं कर सके",
		SimulationDisabled:  "परीक्षण भुगतान बंद हैं",
		PhoneTaken:          "इस फ़ोन नंबर से खाता पहले से मौजूद है",
		LoginFailed:         "इस फ़ोन नंबर से कोई खाता नहीं मिला",
		Unauthorized:        "जारी रखने के लिए कृपया साइन इन करें",
		TooManyRequests:     "बहुत अधिक अनुरोध, कृपया थोड़ा रुकें",
		Unavailable:         "सेवा अस्थायी रूप से उपलब्ध नहीं है, कृपया फिर से प्रयास करें",
		ChatUnavailable:     "हमारा सहायक अभी उपलब्ध नहीं है, कृपया थोड़ी देर बाद प्रयास करें",
		Internal:            "कुछ गलत हो गया, कृपया फिर से प्रयास करें",
	},
}

// fieldMessages translates the English validation messages.
var fieldMessages = map[string]string{
	"Please enter your full name":                       "कृपया अपना पूरा नाम दर्ज करें",
	"Please enter a valid 10-digit Indian phone number": "कृपया 10 अंकों का मान्य भारतीय फ़ोन नंबर दर्ज करें",
	"Please enter a valid email address":                "कृपया मान्य ईमेल पता दर्ज करें",
	"Please enter a complete delivery address":          "कृपया पूरा डिलीवरी पता दर्ज करें",
	"Please tell us your name":                          "कृपया अपना नाम बताएं",
	"Rating must be a whole number from 1 to 5":         "रेटिंग 1 से 5 के बीच पूर्ण संख्या होनी चाहिए",
	"Please write a short review":                       "कृपया एक छोटी समीक्षा लिखें",
}

// Negotiate picks English or Hindi from an Accept-Language header.
func Negotiate(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return English
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}
	return supported[idx]
}

// T returns the message for key, falling back to English.
func T(tag language.Tag, key Key) string {
	if msgs, ok := catalog[tag]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[English][key]; ok {
		return msg
	}
	return string(key)
}

// Field translates a validation message; unknown messages pass through.
func Field(tag language.Tag, msg string) string {
	if tag != Hindi {
		return msg
	}
	if hi, ok := fieldMessages[msg]; ok {
		return hi
	}
	return msg
}

type ctxKey struct{}

func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, tag)
}

// FromCtx returns the negotiated language, English when none was set.
func FromCtx(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(ctxKey{}).(language.Tag); ok {
		return tag
	}
	return English
}

// Middleware stores the negotiated language on the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := Negotiate(r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), tag)))
	})
}
