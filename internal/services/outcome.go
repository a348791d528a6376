package services

import (
	log "github.com/sirupsen/logrus"

	"herotime/internal/models/response_models"
)

// Best-effort steps of a generation. Their failures never fail the request.
const (
	StepDurableUpload = "durable_upload"
	StepSourceCleanup = "source_cleanup"
	StepMarkSucceeded = "mark_succeeded"
)

type SideEffect struct {
	Step string
	Err  error
}

// GenerationOutcome separates the primary result from the side effects that ran after it.
type GenerationOutcome struct {
	Result      response_models.GenerateImageResponse
	SideEffects []SideEffect
}

func (o *GenerationOutcome) record(step string, err error, fields log.Fields) {
	o.SideEffects = append(o.SideEffects, SideEffect{Step: step, Err: err})
	if err != nil {
		log.WithError(err).WithFields(fields).WithField("step", step).Warn("generation side effect failed")
	}
}

// Failed returns the side effects that did not complete.
func (o *GenerationOutcome) Failed() []SideEffect {
	var failed []SideEffect
	for _, se := range o.SideEffects {
		if se.Err != nil {
			failed = append(failed, se)
		}
	}
	return failed
}

// Durable reports whether the image was copied into owned storage.
func (o *GenerationOutcome) Durable() bool {
	for _, se := range o.SideEffects {
		if se.Step == StepDurableUpload {
			return se.Err == nil
		}
	}
	return false
}
