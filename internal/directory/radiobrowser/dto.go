package radiobrowser

// Station is a station record as returned by /json/stations/*
type Station struct {
	StationUUID string `json:"stationuuid"`
	ChangeUUID  string `json:"changeuuid,omitempty"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	URLResolved string `json:"url_resolved"`
	Homepage    string `json:"homepage,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	Tags        string `json:"tags,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"countrycode,omitempty"`
	State       string `json:"state,omitempty"`
	Language    string `json:"language,omitempty"`
	Votes       int    `json:"votes,omitempty"`
	Codec       string `json:"codec,omitempty"`
	Bitrate     int    `json:"bitrate,omitempty"`
	LastCheckOK int    `json:"lastcheckok,omitempty"`
}

// NamedEntry is an entry of /json/countries or /json/languages
type NamedEntry struct {
	Name         string `json:"name"`
	StationCount int    `json:"stationcount,omitempty"`
}

// ClickResponse is the reply of /json/url/{stationuuid}
type ClickResponse struct {
	Message     string `json:"message"`
	StationUUID string `json:"stationuuid"`
	Name        string `json:"name"`
	URL         string `json:"url"`
}
