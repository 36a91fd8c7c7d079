package pipeline

// OnProgress receives the number of finished steps out of total and a short description.
type OnProgress func(current float64, total float64, message string)

// OnStatus receives the two status labels: the in-flight progress text and the final message.
type OnStatus func(progress string, message string)

// stepsPerSymbol counts fetch, info, persist and render.
const stepsPerSymbol = 4

type progress struct {
	onProgress OnProgress
	total      float64
	current    float64
}

func newProgress(onProgress OnProgress, symbols int) *progress {
	return &progress{
		onProgress: onProgress,
		total:      float64(symbols * stepsPerSymbol),
	}
}

// step reports message for the step about to start.
func (p *progress) step(message string) {
	if p.onProgress != nil {
		p.onProgress(p.current, p.total, message)
	}

	p.current++
}

// skip accounts for a step that will not run.
func (p *progress) skip() {
	p.current++
}

func (p *progress) done(message string) {
	if p.onProgress != nil {
		p.onProgress(p.total, p.total, message)
	}
}
