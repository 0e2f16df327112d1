package reporters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/samvad-hq/sphere-client/internal/logger"
)

func testEvent() RunEvent {
	return NewRunEvent(uuid.MustParse("6f1c2a4e-8d3b-4c55-9a10-2b7e5d9f0c11"), "Hello", "GET", "/", 200, 12*time.Millisecond, "")
}

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSReporterReportSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	rep := &sqsReporter{id: "queue", typ: TypeSQS, queueURL: "https://example.com/queue", client: client, log: &logger.NopLogger{}}

	if err := rep.Report(context.Background(), testEvent()); err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["run_id"]
	if !ok || aws.ToString(attr.StringValue) != "6f1c2a4e-8d3b-4c55-9a10-2b7e5d9f0c11" {
		t.Fatalf("run_id attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if !strings.Contains(aws.ToString(client.input.MessageBody), `"elapsed_ms":12`) {
		t.Fatalf("MessageBody missing elapsed_ms: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSReporterReportError(t *testing.T) {
	rep := &sqsReporter{id: "queue", client: &fakeSQSClient{err: errors.New("boom")}, log: &logger.NopLogger{}}
	if err := rep.Report(context.Background(), testEvent()); err == nil {
		t.Fatalf("expected error from Report")
	}
}

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSNSReporterReportSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	rep := &snsReporter{id: "topic", typ: TypeSNS, topicARN: "arn:aws:sns:::topic", client: client, log: &logger.NopLogger{}}

	if err := rep.Report(context.Background(), testEvent()); err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:::topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	if attr := client.input.MessageAttributes["endpoint"]; aws.ToString(attr.StringValue) != "/" {
		t.Fatalf("endpoint attribute missing or wrong: %#v", attr)
	}
	var decoded RunEvent
	if err := json.Unmarshal([]byte(aws.ToString(client.input.Message)), &decoded); err != nil {
		t.Fatalf("Message is not a run event: %v", err)
	}
	if decoded.Name != "Hello" || decoded.Status != 200 {
		t.Fatalf("unexpected decoded event %+v", decoded)
	}
}

func TestSNSReporterReportError(t *testing.T) {
	rep := &snsReporter{id: "topic", client: &fakeSNSClient{err: errors.New("boom")}, log: &logger.NopLogger{}}
	if err := rep.Report(context.Background(), testEvent()); err == nil {
		t.Fatalf("expected error from Report")
	}
}

func TestHTTPReporterSuccess(t *testing.T) {
	var received RunEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %s", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rep, err := newHTTPReporter(context.Background(), ReporterConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPConfig{
			URL:            srv.URL,
			Method:         http.MethodPut,
			Headers:        map[string]string{"X-Test": "1"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPReporter: %v", err)
	}

	if err := rep.Report(context.Background(), testEvent()); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if received.Endpoint != "/" || received.RunID.String() != "6f1c2a4e-8d3b-4c55-9a10-2b7e5d9f0c11" {
		t.Fatalf("server received %+v", received)
	}
}

func TestHTTPReporterErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	rep, err := newHTTPReporter(context.Background(), ReporterConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPConfig{URL: srv.URL, Method: http.MethodPost, TimeoutSeconds: 1},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPReporter: %v", err)
	}

	err = rep.Report(context.Background(), testEvent())
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGCPPubSubReporterPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	admin, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer admin.Close()
	if _, err := admin.CreateTopic(ctx, "runs"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	rep, err := newGCPPubSubReporter(ctx, ReporterConfig{
		ID:     "pubsub",
		Type:   TypeGCPPubSub,
		PubSub: &PubSubConfig{ProjectID: "test-project", Topic: "runs"},
	}, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubReporter: %v", err)
	}
	defer rep.(*gcpPubSubReporter).Close()

	if err := rep.Report(ctx, testEvent()); err != nil {
		t.Fatalf("Report: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(msgs))
	}
	if msgs[0].Attributes["run_id"] != "6f1c2a4e-8d3b-4c55-9a10-2b7e5d9f0c11" {
		t.Fatalf("unexpected attributes %v", msgs[0].Attributes)
	}
}
