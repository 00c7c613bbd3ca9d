package models

import "encoding/json"

// PaymentInitiation is the successful result of POST /fib/hotel/{id}/{roomId}.
type PaymentInitiation struct {
	PaymentID       string `json:"paymentId"`
	PersonalAppLink string `json:"personalAppLink,omitempty"`
}

// PaymentResponse is the raw response of the payment endpoint. message is
// an object on success and a string on failure.
type PaymentResponse struct {
	Message json.RawMessage `json:"message"`
}
