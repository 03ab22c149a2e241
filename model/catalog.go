package model

// CatalogEntry is one row of the price list: the advertised starting price of
// a brand/model/engine combination.
type CatalogEntry struct {
	Brand         string `json:"merk"`
	Model         string `json:"model"`
	Engine        string `json:"motor"`
	StartingPrice Amount `json:"vanafprijs"`
}
