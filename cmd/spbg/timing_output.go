package main

import (
	"fmt"
	"io"

	"spbg/internal/pipeline"
)

func printStageTimings(out io.Writer, res pipeline.Result) {
	if out == nil || res.Timer == nil {
		return
	}
	if _, err := fmt.Fprint(out, res.Timer.Summary()); err != nil {
		panic(err)
	}
}
