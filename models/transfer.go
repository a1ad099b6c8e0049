package models

// TransferResult summarizes one catalog transfer between two tenants. It is
// never persisted; counters start at zero and only increase. Success is
// computed from ProductsCloned, never set directly.
type TransferResult struct {
	Success          bool     `json:"success"`
	CategoriesCloned int      `json:"categories_cloned"`
	ProductsCloned   int      `json:"products_cloned"`
	ImagesCloned     int      `json:"images_cloned"`
	Skipped          int      `json:"skipped"`
	Errors           []string `json:"errors"`
}

// Finish computes the success flag from the product counter.
func (r *TransferResult) Finish() *TransferResult {
	r.Success = r.ProductsCloned > 0
	return r
}
