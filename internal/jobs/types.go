package jobs

type JobType string

const (
	// JobShareInvitation notifies an email that an owner shared their
	// account data with them.
	JobShareInvitation JobType = "share_invitation"

	// JobMetricsDigest builds a summary of business metrics for an owner.
	JobMetricsDigest JobType = "metrics_digest"
)

// check to see if the job type is a known constant

func (t JobType) IsValid() bool {
	switch t {
	case JobShareInvitation, JobMetricsDigest:
		return true
	default:
		return false
	}
}
