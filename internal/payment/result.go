package payment

// Success is the provider's confirmation of a captured payment.
type Success struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Signature string `json:"signature"`
}

type Failure struct {
	Reason string `json:"reason"`
}

// Result holds exactly one of Success or Failure.
type Result struct {
	success *Success
	failure *Failure
}

func Succeeded(s Success) Result {
	return Result{success: &s}
}

func Failed(reason string) Result {
	if reason == "" {
		reason = "payment was not completed"
	}
	return Result{failure: &Failure{Reason: reason}}
}

func (r Result) Success() (Success, bool) {
	if r.success == nil {
		return Success{}, false
	}
	return *r.success, true
}

func (r Result) Failure() (Failure, bool) {
	if r.failure == nil {
		return Failure{}, false
	}
	return *r.failure, true
}

func (r Result) IsSuccess() bool {
	return r.success != nil
}
