package models

import "time"

// Profile is one maker's public page. Handle is the lookup key; EditSecret
// is the capability that proves the right to change it.
type Profile struct {
	ID         string    `json:"id"`
	Handle     string    `json:"handle"`
	Name       string    `json:"name"`
	MakerID    string    `json:"makerId"`
	Bio        string    `json:"bio"`
	Tags       []string  `json:"tags"`
	TopItems   []TopItem `json:"topItems"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	EditSecret string    `json:"editSecret"`
}

// TopItem is one entry of a profile's ordered favorites list.
type TopItem struct {
	Title  string `json:"title"`
	ItemID string `json:"itemId"`
	Note   string `json:"note,omitempty"`
}

// Clone returns a copy that shares no slices with p.
func (p Profile) Clone() Profile {
	clone := p
	clone.Tags = append([]string{}, p.Tags...)
	clone.TopItems = append([]TopItem{}, p.TopItems...)
	return clone
}
