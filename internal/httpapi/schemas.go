package httpapi

import "lodgia.org/internal/schema"

// Declared request shapes. The validate gate strips anything not listed
// here before the handler binds the payload.

func registerSchema() schema.Schema {
	return schema.Schema{Fields: map[string]schema.Field{
		"email":    {Type: schema.TypeString, Required: true, MaxLen: 254},
		"username": {Type: schema.TypeString, Required: true, MinLen: 3, MaxLen: 40},
		"password": {Type: schema.TypeString, Required: true, MinLen: 8, MaxLen: 72},
	}}
}

func loginSchema() schema.Schema {
	return schema.Schema{Fields: map[string]schema.Field{
		"email":    {Type: schema.TypeString, Required: true},
		"password": {Type: schema.TypeString, Required: true},
	}}
}

func newListingSchema() schema.Schema {
	return schema.Schema{Fields: map[string]schema.Field{
		"title":               {Type: schema.TypeString, Required: true, MinLen: 3, MaxLen: 140},
		"description":         {Type: schema.TypeString, MaxLen: 2000},
		"location":            {Type: schema.TypeString, Required: true, MaxLen: 200},
		"nightly_price_cents": {Type: schema.TypeNumber, Required: true, Min: f(1)},
		"max_guests":          {Type: schema.TypeNumber, Required: true, Min: f(1), Max: f(32)},
	}}
}

func updateListingSchema() schema.Schema {
	return schema.Schema{Fields: map[string]schema.Field{
		"title":               {Type: schema.TypeString, MinLen: 3, MaxLen: 140},
		"description":         {Type: schema.TypeString, MaxLen: 2000},
		"location":            {Type: schema.TypeString, MaxLen: 200},
		"nightly_price_cents": {Type: schema.TypeNumber, Min: f(1)},
		"max_guests":          {Type: schema.TypeNumber, Min: f(1), Max: f(32)},
	}}
}

func newBookingSchema() schema.Schema {
	return schema.Schema{Fields: map[string]schema.Field{
		"listing_id": {Type: schema.TypeString, Required: true},
		"check_in":   {Type: schema.TypeString, Required: true},
		"check_out":  {Type: schema.TypeString, Required: true},
		"guests":     {Type: schema.TypeNumber, Required: true, Min: f(1)},
	}}
}

func newReviewSchema() schema.Schema {
	return schema.Schema{Fields: map[string]schema.Field{
		"rating":  {Type: schema.TypeNumber, Required: true, Min: f(1), Max: f(5)},
		"comment": {Type: schema.TypeString, MaxLen: 2000},
	}}
}

func f(v float64) *float64 { return &v }
