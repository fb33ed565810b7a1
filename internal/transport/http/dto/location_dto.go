package dto

type LocationRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
