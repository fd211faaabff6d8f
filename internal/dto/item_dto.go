package dto

type CreateItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	PointValue  *int   `json:"point_value"`
}

// UpdateItemRequest uses pointers so absent fields are left untouched.
type UpdateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	PointValue  *int    `json:"point_value"`
	Available   *bool   `json:"available"`
}
