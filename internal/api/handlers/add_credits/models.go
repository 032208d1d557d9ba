package add_credits

// AddCreditsRequest HTTP request model
type AddCreditsRequest struct {
	UserID int64 `json:"userId"`
	Amount int64 `json:"amount"`
}

// AddCreditsResponse HTTP response model
type AddCreditsResponse struct {
	UserID int64 `json:"userId"`
	Wallet int64 `json:"wallet"`
}
