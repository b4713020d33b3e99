package catalog

import "blupr/internal/domain"

// DemoProfile es un encuestado de ejemplo para la experiencia inicial de matching.
type DemoProfile struct {
	Identity  string
	Name      string
	Responses domain.ResponseSet
}

// DemoProfiles devuelve la poblacion de ejemplo, pensada para el catalogo por defecto.
func DemoProfiles() []DemoProfile {
	return []DemoProfile{
		{Identity: "demo-alex-rivera", Name: "Alex Rivera", Responses: domain.ResponseSet{1: 4, 2: 5, 3: 4, 4: 4, 5: 2, 6: 2, 7: 5, 8: 4, 9: 2, 10: 4}},
		{Identity: "demo-sam-chen", Name: "Sam Chen", Responses: domain.ResponseSet{1: 5, 2: 4, 3: 5, 4: 3, 5: 2, 6: 2, 7: 4, 8: 5, 9: 3, 10: 5}},
		{Identity: "demo-jordan-taylor", Name: "Jordan Taylor", Responses: domain.ResponseSet{1: 3, 2: 3, 3: 3, 4: 4, 5: 4, 6: 3, 7: 3, 8: 3, 9: 2, 10: 2}},
		{Identity: "demo-casey-morgan", Name: "Casey Morgan", Responses: domain.ResponseSet{1: 2, 2: 2, 3: 2, 4: 5, 5: 5, 6: 4, 7: 2, 8: 2, 9: 1, 10: 1}},
		{Identity: "demo-riley-park", Name: "Riley Park", Responses: domain.ResponseSet{1: 4, 2: 4, 3: 4, 4: 4, 5: 3, 6: 2, 7: 4, 8: 4, 9: 2, 10: 4}},
	}
}
