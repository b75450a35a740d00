// Package publisher sends story events to downstream consumers: AWS SNS topics,
// SQS queues, Google Cloud Pub/Sub topics and plain HTTP endpoints. Publishers
// are declared in a YAML or JSON file and fanned out per packaged post.
package publisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Supported publisher types.
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// ErrNoPublishers is returned when a publishers file declares no entries.
var ErrNoPublishers = errors.New("publishers file contains no publishers entries")

type configFile struct {
	Publishers []Config `json:"publishers" yaml:"publishers"`
}

// Config is a single publisher entry.
type Config struct {
	ID      string       `json:"id" yaml:"id"`
	Type    string       `json:"type" yaml:"type"`
	Enabled *bool        `json:"enabled" yaml:"enabled"`
	Queue   *QueueConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPConfig  `json:"http" yaml:"http"`
}

// QueueConfig selects a cloud queue provider.
type QueueConfig struct {
	Provider string     `json:"provider" yaml:"provider"`
	SQS      *SQSConfig `json:"sqs" yaml:"sqs"`
	SNS      *SNSConfig `json:"sns" yaml:"sns"`
	GCP      *GCPConfig `json:"gcp" yaml:"gcp"`
}

// AWSCredentials are optional static keys. When both are empty the default
// AWS credential chain (environment, shared config, instance role) is used.
type AWSCredentials struct {
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	// Endpoint overrides the service endpoint, e.g. for LocalStack.
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// SQSConfig holds AWS SQS settings.
type SQSConfig struct {
	QueueURL       string `json:"uri" yaml:"uri"`
	AWSCredentials `yaml:",inline"`
}

// SNSConfig holds AWS SNS settings.
type SNSConfig struct {
	TopicARN       string `json:"topic_arn" yaml:"topic_arn"`
	AWSCredentials `yaml:",inline"`
}

// GCPConfig holds Pub/Sub topic settings.
type GCPConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPConfig holds generic HTTP sink settings.
type HTTPConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// IsEnabled returns the enabled flag, defaulting to true.
func (c Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// LoadConfigs reads a publishers file. ${VAR} references are expanded from
// the environment before decoding, so secrets can stay out of the file.
//
// Example publishers.yaml:
//
//	publishers:
//	  - id: stories-sns
//	    type: queue
//	    queue:
//	      provider: aws-sns
//	      sns:
//	        topic_arn: arn:aws:sns:ap-northeast-2:123456789012:stories
//	        region: ap-northeast-2
func LoadConfigs(path string) ([]Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	return ParseConfigs([]byte(os.ExpandEnv(string(raw))), filepath.Ext(path))
}

// ParseConfigs decodes, normalizes and validates publisher entries.
// ext selects the decoder (".yaml", ".yml" or ".json"); an empty ext tries both.
func ParseConfigs(data []byte, ext string) ([]Config, error) {
	file, err := decode(data, ext)
	if err != nil {
		return nil, err
	}
	if len(file.Publishers) == 0 {
		return nil, ErrNoPublishers
	}

	seen := make(map[string]struct{}, len(file.Publishers))
	out := make([]Config, 0, len(file.Publishers))
	for i, cfg := range file.Publishers {
		cfg = sanitize(cfg)
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		out = append(out, cfg)
	}
	return out, nil
}

// Enabled filters cfgs down to the enabled entries.
func Enabled(cfgs []Config) []Config {
	out := make([]Config, 0, len(cfgs))
	for _, cfg := range cfgs {
		if cfg.IsEnabled() {
			out = append(out, cfg)
		}
	}
	return out
}

func decode(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		exts []string
		fn   func([]byte, any) error
	}{
		{name: "yaml", exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
		{name: "json", exts: []string{".json"}, fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && !contains(d.exts, ext) {
			continue
		}
		var file configFile
		if err := d.fn(data, &file); err != nil {
			lastErr = fmt.Errorf("decode %s publishers: %w", d.name, err)
			continue
		}
		return file, nil
	}
	if lastErr != nil {
		return configFile{}, lastErr
	}
	return configFile{}, fmt.Errorf("publishers file extension %q not recognized (expected YAML or JSON)", ext)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sanitize(cfg Config) Config {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Queue != nil {
		qc := *cfg.Queue
		qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
		if qc.SQS != nil {
			s := *qc.SQS
			s.QueueURL = strings.TrimSpace(s.QueueURL)
			s.AWSCredentials = trimCredentials(s.AWSCredentials)
			qc.SQS = &s
		}
		if qc.SNS != nil {
			s := *qc.SNS
			s.TopicARN = strings.TrimSpace(s.TopicARN)
			s.AWSCredentials = trimCredentials(s.AWSCredentials)
			qc.SNS = &s
		}
		if qc.GCP != nil {
			g := *qc.GCP
			g.ProjectID = strings.TrimSpace(g.ProjectID)
			g.Topic = strings.TrimSpace(g.Topic)
			g.CredentialsFile = strings.TrimSpace(g.CredentialsFile)
			qc.GCP = &g
		}
		cfg.Queue = &qc
	}

	if cfg.HTTP != nil {
		h := *cfg.HTTP
		h.URL = strings.TrimSpace(h.URL)
		h.Method = strings.ToUpper(strings.TrimSpace(h.Method))
		if h.Method == "" {
			h.Method = httpDefaultMethod
		}
		h.Headers = sanitizeHeaders(h.Headers)
		if h.TimeoutSeconds <= 0 {
			h.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &h
	}

	return cfg
}

func trimCredentials(c AWSCredentials) AWSCredentials {
	c.Region = strings.TrimSpace(c.Region)
	c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
	c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	return c
}

// sanitizeHeaders trims header names and values and drops empty ones.
func sanitizeHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key, val := strings.TrimSpace(k), strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validate(cfg Config) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	case TypeQueue:
		return validateQueue(cfg.ID, cfg.Queue)
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for publisher %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for publisher %q", cfg.ID)
		}
		return nil
	default:
		return fmt.Errorf("type %q not supported for publisher %q", cfg.Type, cfg.ID)
	}
}

func validateQueue(id string, qc *QueueConfig) error {
	if qc == nil {
		return fmt.Errorf("queue config required for publisher %q", id)
	}
	switch qc.Provider {
	case QueueProviderAWSSQS:
		if qc.SQS == nil {
			return fmt.Errorf("sqs config required for publisher %q", id)
		}
		if qc.SQS.QueueURL == "" {
			return fmt.Errorf("sqs.uri is required for publisher %q", id)
		}
		return validateCredentials(id, "sqs", qc.SQS.AWSCredentials)
	case QueueProviderAWSSNS:
		if qc.SNS == nil {
			return fmt.Errorf("sns config required for publisher %q", id)
		}
		if qc.SNS.TopicARN == "" {
			return fmt.Errorf("sns.topic_arn is required for publisher %q", id)
		}
		return validateCredentials(id, "sns", qc.SNS.AWSCredentials)
	case QueueProviderGCP:
		if qc.GCP == nil {
			return fmt.Errorf("gcp config required for publisher %q", id)
		}
		if qc.GCP.ProjectID == "" {
			return fmt.Errorf("gcp.project_id is required for publisher %q", id)
		}
		if qc.GCP.Topic == "" {
			return fmt.Errorf("gcp.topic is required for publisher %q", id)
		}
		return nil
	default:
		return fmt.Errorf("queue provider %q not supported for publisher %q", qc.Provider, id)
	}
}

// validateCredentials requires a region and either both static keys or neither.
func validateCredentials(id, prefix string, c AWSCredentials) error {
	if c.Region == "" {
		return fmt.Errorf("%s.region is required for publisher %q", prefix, id)
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("%s.access_key_id and %s.secret_access_key must be set together for publisher %q", prefix, prefix, id)
	}
	return nil
}
