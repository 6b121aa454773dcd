// Prevalidate checks privacy-computation input files before a computation
// is started on them.
//
// Usage:
//
//	# Validate one file and print the report
//	prevalidate validate --input s3://bucket/input.csv --role partner --partner-pc
//
//	# Stream the file in byte ranges and print YAML
//	prevalidate validate --input gs://bucket/input.csv --stream --format yaml
//
//	# Run the HTTP validation service
//	prevalidate serve
//
// Configuration comes from environment variables, optionally loaded from a
// .env file; see internal/config for the full list.
package main

func main() {
	Execute()
}
