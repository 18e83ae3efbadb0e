package main

import (
	"flag"
	"os"

	"github.com/m-lab/go/cloud/bqx"
	"github.com/m-lab/go/rtx"

	"github.com/hostprobe/hostprobe/pkg/results"

	"cloud.google.com/go/bigquery"
)

var reportSchema string

func init() {
	flag.StringVar(&reportSchema, "report", "/var/spool/datatypes/hostprobe.json", "filename to write report schema")
}

func main() {
	flag.Parse()
	// Generate and save the schema for autoloading archived check reports.
	report := results.ArchivalReport{}
	sch, err := bigquery.InferSchema(report)
	rtx.Must(err, "failed to generate report schema")
	sch = bqx.RemoveRequired(sch)
	b, err := sch.ToJSONFields()
	rtx.Must(err, "failed to marshal report schema")
	err = os.WriteFile(reportSchema, b, 0o644)
	rtx.Must(err, "failed to write report schema")
}
