package main

import (
	"fmt"
	"io"

	"sdkpcm/internal/buildpipeline"
	"sdkpcm/internal/observ"
)

var timedStages = []buildpipeline.Stage{
	buildpipeline.StageOrder,
	buildpipeline.StageAssemble,
	buildpipeline.StageExecute,
}

// printStageTimings appends the pipeline stages to tm and prints its summary.
func printStageTimings(out io.Writer, tm *observ.Timer, timings buildpipeline.Timings, modules int) error {
	for _, stage := range timedStages {
		if !timings.Has(stage) {
			continue
		}
		note := ""
		if stage == buildpipeline.StageAssemble || stage == buildpipeline.StageExecute {
			note = fmt.Sprintf("%d modules", modules)
		}
		tm.Record(string(stage), timings.Duration(stage), note)
	}
	_, err := io.WriteString(out, tm.Summary())
	return err
}
