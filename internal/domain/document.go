package domain

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Document is the decoded DWML tree. Only the elements the hourly table uses
// are modelled; everything else is ignored by the decoder.
type Document struct {
	XMLName xml.Name `xml:"dwml"`
	Head    Head     `xml:"head"`
	Data    Data     `xml:"data"`
}

// Head carries product metadata.
type Head struct {
	Product Product `xml:"product"`
}

// Product describes the NDFD product that generated the document.
type Product struct {
	Title        string `xml:"title"`
	CreationDate string `xml:"creation-date"`
}

// Data holds the forecast location, its time layouts and parameter blocks.
type Data struct {
	Locations   []LocationElement   `xml:"location"`
	TimeLayouts []TimeLayoutElement `xml:"time-layout"`
	Parameters  []Parameters        `xml:"parameters"`
}

// LocationElement is a forecast point.
type LocationElement struct {
	Key   string `xml:"location-key"`
	Point Point  `xml:"point"`
}

// Point is a WGS-84 coordinate pair as written in the document.
type Point struct {
	Latitude  string `xml:"latitude,attr"`
	Longitude string `xml:"longitude,attr"`
}

// TimeLayoutElement is one <time-layout> declaration. Start and end times
// keep document order, which is the only thing that pairs them.
type TimeLayoutElement struct {
	Key        string   `xml:"layout-key"`
	StartTimes []string `xml:"start-valid-time"`
	EndTimes   []string `xml:"end-valid-time"`
}

// Parameters groups the forecast quantities for one location.
type Parameters struct {
	ApplicableLocation string        `xml:"applicable-location,attr"`
	Temperatures       []ValueSeries `xml:"temperature"`
	WindSpeeds         []ValueSeries `xml:"wind-speed"`
	Directions         []ValueSeries `xml:"direction"`
	CloudAmounts       []ValueSeries `xml:"cloud-amount"`
	Precipitation      []ValueSeries `xml:"precipitation"`
	Humidity           []ValueSeries `xml:"humidity"`
	Weather            []Weather     `xml:"weather"`
}

// ValueSeries is a parameter element holding a list of <value> nodes.
type ValueSeries struct {
	Type       string  `xml:"type,attr"`
	Units      string  `xml:"units,attr"`
	TimeLayout string  `xml:"time-layout,attr"`
	Name       string  `xml:"name"`
	Values     []Value `xml:"value"`
}

// Value is a single <value> node. Nil is set for xsi:nil="true".
type Value struct {
	Text string `xml:",chardata"`
	Nil  bool   `xml:"http://www.w3.org/2001/XMLSchema-instance nil,attr"`
}

// Weather is the <weather> element: one conditions group per interval.
type Weather struct {
	TimeLayout string              `xml:"time-layout,attr"`
	Name       string              `xml:"name"`
	Conditions []WeatherConditions `xml:"weather-conditions"`
}

// WeatherConditions is one interval's group of coded condition values.
type WeatherConditions struct {
	Values []ConditionEntry `xml:"value"`
}

// ConditionEntry is one coded weather condition. Missing attributes decode
// to the empty string.
type ConditionEntry struct {
	Coverage    string `xml:"coverage,attr"`
	Intensity   string `xml:"intensity,attr"`
	Additive    string `xml:"additive,attr"`
	Qualifier   string `xml:"qualifier,attr"`
	WeatherType string `xml:"weather-type,attr"`
}

// Blank reports whether the value carries no data.
func (v Value) Blank() bool {
	return v.Nil || strings.TrimSpace(v.Text) == ""
}

// DecodeDocument parses a DWML document. The returned tree owns all of its
// strings, so the reader's buffer may be released afterwards.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return &doc, nil
}
