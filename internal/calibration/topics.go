package calibration

import (
	"math"
	"sort"
)

// Sample is one confidence/score observation tagged with its topic
// (an objective id or concept tag).
type Sample struct {
	Topic      string
	Confidence int
	Score      float64
}

// TopicSummary aggregates calibration for a single topic.
type TopicSummary struct {
	Topic        string   `json:"topic"`
	Count        int      `json:"count"`
	MeanDelta    float64  `json:"mean_delta"`
	MeanAbsError float64  `json:"mean_abs_error"`
	Category     Category `json:"category"`
}

// Report is the windowed calibration quality summary for a learner.
type Report struct {
	Records      []Record       `json:"records"`
	Correlation  *Correlation   `json:"correlation,omitempty"`
	MeanAbsError *float64       `json:"mean_abs_error,omitempty"`
	Topics       []TopicSummary `json:"topics"`
}

// BuildReport analyzes a window of samples. Any out-of-range sample fails
// the whole report.
func BuildReport(samples []Sample) (*Report, error) {
	report := &Report{Records: make([]Record, 0, len(samples))}

	confidences := make([]float64, 0, len(samples))
	scores := make([]float64, 0, len(samples))
	for _, s := range samples {
		rec, err := Analyze(s.Confidence, s.Score)
		if err != nil {
			return nil, err
		}
		report.Records = append(report.Records, rec)
		confidences = append(confidences, rec.NormalizedConfidence)
		scores = append(scores, rec.Score)
	}

	corr, err := Correlate(confidences, scores)
	if err != nil {
		return nil, err
	}
	report.Correlation = corr

	if mae, ok := MeanAbsoluteError(report.Records); ok {
		report.MeanAbsError = &mae
	}

	topics, err := ByTopic(samples)
	if err != nil {
		return nil, err
	}
	report.Topics = topics
	return report, nil
}

// ByTopic groups samples by topic and reports which topics are systematically
// over- or under-confident. Output is sorted by topic.
func ByTopic(samples []Sample) ([]TopicSummary, error) {
	type acc struct {
		n      int
		sum    float64
		absSum float64
	}
	groups := make(map[string]*acc)

	for _, s := range samples {
		d, err := Delta(s.Confidence, s.Score)
		if err != nil {
			return nil, err
		}
		a := groups[s.Topic]
		if a == nil {
			a = &acc{}
			groups[s.Topic] = a
		}
		a.n++
		a.sum += d
		a.absSum += math.Abs(d)
	}

	out := make([]TopicSummary, 0, len(groups))
	for topic, a := range groups {
		mean := a.sum / float64(a.n)
		out = append(out, TopicSummary{
			Topic:        topic,
			Count:        a.n,
			MeanDelta:    mean,
			MeanAbsError: a.absSum / float64(a.n),
			Category:     Categorize(mean),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out, nil
}
