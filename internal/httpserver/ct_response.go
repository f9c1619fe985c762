package httpserver

import (
	"strings"
	"time"

	"instant-checkout/internal/domain"
)

type ctProduct struct {
	ID             string            `json:"id"`
	Key            string            `json:"key,omitempty"`
	Version        int               `json:"version"`
	CreatedAt      time.Time         `json:"createdAt"`
	LastModifiedAt time.Time         `json:"lastModifiedAt"`
	ProductType    *ctRef            `json:"productType,omitempty"`
	MasterData     ctMasterData      `json:"masterData"`
	PriceMode      string            `json:"priceMode,omitempty"`
	Published      bool              `json:"published"`
	Slug           map[string]string `json:"slug,omitempty"`
}

type ctMasterData struct {
	Current          ctProductData `json:"current"`
	Staged           ctProductData `json:"staged"`
	Published        bool          `json:"published"`
	HasStagedChanges bool          `json:"hasStagedChanges"`
}

type ctProductData struct {
	Name          map[string]string `json:"name"`
	Description   map[string]string `json:"description,omitempty"`
	Slug          map[string]string `json:"slug,omitempty"`
	MasterVariant ctVariant         `json:"masterVariant"`
	Variants      []ctVariant       `json:"variants"`
}

type ctVariant struct {
	ID         int           `json:"id"`
	SKU        string        `json:"sku"`
	Prices     []ctPrice     `json:"prices"`
	Images     []ctImage     `json:"images"`
	Assets     []interface{} `json:"assets"`
	Attributes []interface{} `json:"attributes"`
}

type ctAttribute struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

type ctPrice struct {
	ID    string       `json:"id,omitempty"`
	Value ctPriceValue `json:"value"`
}

type ctPriceValue struct {
	Type           string `json:"type"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int    `json:"fractionDigits"`
}

type ctImage struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

type ctRef struct {
	TypeID string `json:"typeId,omitempty"`
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
}

// Product types distinguish goods that need shipping from those that do not.
var (
	physicalProductType = &ctRef{TypeID: "product-type", Key: "physical"}
	virtualProductType  = &ctRef{TypeID: "product-type", Key: "virtual"}
)

func toCTProduct(p domain.Product) ctProduct {
	slug := map[string]string{}
	if p.Key != "" {
		slug["en"] = strings.ReplaceAll(strings.ToLower(p.Key), " ", "-")
	}
	var desc map[string]string
	if p.Description != "" {
		desc = map[string]string{"en": p.Description}
	}

	productType := physicalProductType
	if p.IsVirtual() {
		productType = virtualProductType
	}

	data := ctProductData{
		Name:        map[string]string{"en": p.Name},
		Description: desc,
		Slug:        slug,
		MasterVariant: ctVariant{
			ID:         1,
			SKU:        p.SKU,
			Prices:     []ctPrice{{Value: centPrice(p.Currency, p.PriceCents)}},
			Images:     imagesFromURLs(parseImageList(p.Attributes["images"])),
			Assets:     []interface{}{},
			Attributes: []interface{}{ctAttribute{Name: "virtual", Value: p.IsVirtual()}},
		},
		Variants: []ctVariant{},
	}

	return ctProduct{
		ID:             p.ID,
		Key:            p.Key,
		Version:        1,
		CreatedAt:      p.CreatedAt,
		LastModifiedAt: p.CreatedAt,
		ProductType:    productType,
		MasterData: ctMasterData{
			Current:   data,
			Staged:    data,
			Published: true,
		},
		PriceMode: "Embedded",
		Published: true,
		Slug:      slug,
	}
}
