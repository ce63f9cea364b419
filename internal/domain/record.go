package domain

// RouteRecord - сырая запись маршрута от источника данных
type RouteRecord struct {
	ID          string   `json:"id" db:"id" validate:"required"`
	Name        string   `json:"name" db:"name" validate:"required"`
	URL         string   `json:"url" db:"url" validate:"omitempty,url"`
	Grade       string   `json:"grade" db:"grade" validate:"required"`
	RouteTypes  []string `json:"route_types" db:"route_types"`
	Pitches     int      `json:"num_pitches" db:"num_pitches" validate:"gte=0"`
	Length      int      `json:"length" db:"length" validate:"gte=0"`
	Rating      float64  `json:"rating" db:"rating" validate:"gte=0,lte=5"`
	Popularity  int      `json:"num_reviewers" db:"num_reviewers" validate:"gte=0"`
	AreaPath    []string `json:"area" db:"area_path" validate:"min=1,dive,required"`
	Coordinates *LatLon  `json:"coordinates,omitempty" db:"-"`
}

// Region - регион-источник (страна или штат), из которого строится поддерево
type Region struct {
	Name   string `json:"name" db:"name"`
	Routes int    `json:"routes" db:"routes"`
}
