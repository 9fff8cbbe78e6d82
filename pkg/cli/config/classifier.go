package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/domain/interfaces"
	"github.com/secmon-lab/dermarisk/pkg/service/classifier"
	"github.com/urfave/cli/v3"
)

// Classifier holds CLI flags for the remote image classifier
type Classifier struct {
	endpoint string
	timeout  time.Duration
}

func (x *Classifier) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "classifier-endpoint",
			Usage:       "URL of the image classifier (POST multipart field 'file'). Image analysis is disabled when empty",
			Category:    "Classifier",
			Sources:     cli.EnvVars("DERMARISK_CLASSIFIER_ENDPOINT"),
			Destination: &x.endpoint,
		},
		&cli.DurationFlag{
			Name:        "classifier-timeout",
			Usage:       "Timeout of a classifier request",
			Category:    "Classifier",
			Value:       classifier.DefaultTimeout,
			Sources:     cli.EnvVars("DERMARISK_CLASSIFIER_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
}

// IsConfigured returns true when an endpoint is set
func (x *Classifier) IsConfigured() bool {
	return x.endpoint != ""
}

// Configure returns the classifier client, or nil when no endpoint is set
func (x *Classifier) Configure() (interfaces.Classifier, error) {
	if !x.IsConfigured() {
		return nil, nil
	}

	var opts []classifier.Option
	if x.timeout > 0 {
		opts = append(opts, classifier.WithTimeout(x.timeout))
	}

	client, err := classifier.New(x.endpoint, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure classifier")
	}
	return client, nil
}
