package portals

// DTO ответов Portals API. Цены приходят строками, парсим в decimal.

type authRequest struct {
	APIID   string `json:"api_id"`
	APIHash string `json:"api_hash"`
}

type authResponse struct {
	Token string `json:"token"`
}

type activityResponse struct {
	Actions []activityItem `json:"actions"`
}

type activityItem struct {
	ID         string `json:"id"`
	Type       string `json:"type"` // нас интересует только "listing"
	Collection string `json:"collection"`
	Model      string `json:"model"`
	Price      string `json:"price"`
	NftID      string `json:"nft_id"`
}

type modelFloorsResponse struct {
	Floors map[string]string `json:"floors"` // model -> price
}

type collectionResponse struct {
	FloorPrice string `json:"floor_price"`
}
