package checkout

// Decision is the terminal action of a successful run.
type Decision int

const (
	// DecisionClose deactivates the cart and reserves an order id without placing an order.
	DecisionClose Decision = iota
	// DecisionPlace hands the cart to the order placer.
	DecisionPlace
)

func (d Decision) String() string {
	switch d {
	case DecisionPlace:
		return "placed"
	case DecisionClose:
		return "closed"
	default:
		return "unknown"
	}
}

// DecidePlacement places the order when the caller forces it or the cart is free.
func DecidePlacement(isFreeQuote, forcePlace bool) Decision {
	if forcePlace || isFreeQuote {
		return DecisionPlace
	}
	return DecisionClose
}
