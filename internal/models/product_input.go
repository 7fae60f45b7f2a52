package models

// ProductInput carries the editable product fields of a create or update
// request. A nil field was not sent.
type ProductInput struct {
	Title              *string   `json:"title"`
	Description        *string   `json:"description"`
	Price              *float64  `json:"price"`
	DiscountPercentage *float64  `json:"discountPercentage"`
	StockQuantity      *int      `json:"stockQuantity"`
	Category           *string   `json:"category"`
	Brand              *string   `json:"brand"`
	Thumbnail          *string   `json:"thumbnail"`
	Images             *[]string `json:"images"`
}

// Empty reports whether no field was sent.
func (in ProductInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Price == nil &&
		in.DiscountPercentage == nil && in.StockQuantity == nil && in.Category == nil &&
		in.Brand == nil && in.Thumbnail == nil && in.Images == nil
}

// Apply copies every sent field onto p.
func (in ProductInput) Apply(p *Product) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.DiscountPercentage != nil {
		p.DiscountPercentage = *in.DiscountPercentage
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Brand != nil {
		p.Brand = *in.Brand
	}
	if in.Thumbnail != nil {
		p.Thumbnail = *in.Thumbnail
	}
	if in.Images != nil {
		p.Images = append([]string(nil), (*in.Images)...)
	}
}
