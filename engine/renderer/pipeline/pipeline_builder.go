package pipeline

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithSampleCount sets the multisample count the pipeline renders into.
// Values below 1 are treated as 1.
//
// Parameters:
//   - count: the sample count of the color attachment
//
// Returns:
//   - PipelineBuilderOption: a function that sets the sample count for this pipeline
func WithSampleCount(count uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		if count < 1 {
			count = 1
		}
		p.sampleCount = count
	}
}
