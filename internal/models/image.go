package models

type Image struct {
	ID      int    `json:"id"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
	AdID    int    `json:"ad_id"`
	ad      *Ad
}

// Ad is the owning ad, set through Ad.AddImage.
func (i *Image) Ad() *Ad { return i.ad }

type ImageRequest struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}
