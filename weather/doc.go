// Package weather turns provider forecasts into natural-language travel
// advice, optionally narrowed to the dates of a stay. Stay days beyond the
// provider's forecast horizon get seasonal guidance based on hemisphere
// and month.
package weather
