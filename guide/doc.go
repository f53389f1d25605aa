// Package guide generates travel guides.
//
// A generation run has five steps executed by the pipeline orchestrator:
//
//	analyze   extract destination, points of interest and stay dates
//	geocode   resolve the destination and every point of interest
//	weather   forecast advisory for the stay, seasonal beyond the horizon
//	generate  write the itinerary with a Generator
//	persist   store the guide in the Repository
//
// Geocoding misses and weather failures do not fail a run; the guide is
// written without the missing data. Every snapshot of a run is published
// to its sse.Stream, which ends with a complete or error frame.
package guide
