// Package testutil provides testing utilities for lazycdf.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Samples
//
//	rng := testutil.NewRNG(seed)
//	vals := make([]float64, 128)
//	rng.FillUniformRange(vals, 250, 310)
//	rng.Punch(vals, 0.1, -999) // replace ~10% with a fill value
//
// # Fixture Datasets
//
//	ds := testutil.TempHumidity(10)   // time(10) x lat(4) x lon(5), temp + humidity
//
// # Instrumented Readers
//
//	cr := testutil.NewCountingReader(ds) // counts ReadBlock calls per variable
//	fr := testutil.NewFaultyReader(ds)   // injects read failures
package testutil
