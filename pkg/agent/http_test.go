package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/killallgit/easel/pkg/agent"
	"github.com/killallgit/easel/pkg/chat"
	"github.com/killallgit/easel/pkg/config"
)

var _ = Describe("HTTPSource", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		received map[string]any
		headers  http.Header
	)

	BeforeEach(func() {
		received = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal(agent.AgentPath))
			headers = r.Header.Clone()
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			handler(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("should post the request and return the stream body", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = io.WriteString(w, "data: {\"type\":\"message\",\"content\":\"hi\"}\n\ndata: [DONE]\n\n")
		}

		src := agent.NewHTTPSource(server.URL + "/")
		body, err := src.Stream(context.Background(), agent.Request{
			Message: "draw a box",
			History: []chat.Message{
				chat.NewUserMessage("earlier"),
				chat.NewErrorMessage("boom"),
				chat.NewAssistantMessage("done"),
			},
			Shapes: []agent.WireShape{{ID: "shape1", Type: "rectangle", X: 1, Y: 2}},
		})
		Expect(err).ToNot(HaveOccurred())
		defer body.Close()

		data, err := io.ReadAll(body)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("data: [DONE]"))

		Expect(headers.Get("Accept")).To(Equal("text/event-stream"))
		Expect(headers.Get("Content-Type")).To(Equal("application/json"))
		Expect(received["message"]).To(Equal("draw a box"))
		Expect(received["history"]).To(Equal([]any{
			map[string]any{"role": "user", "content": "earlier"},
			map[string]any{"role": "assistant", "content": "done"},
		}))
		Expect(received["shapes"]).To(HaveLen(1))
	})

	It("should send an empty shape list rather than null", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {}

		body, err := agent.NewHTTPSource(server.URL).Stream(context.Background(), agent.Request{Message: "hi"})
		Expect(err).ToNot(HaveOccurred())
		body.Close()
		Expect(received["shapes"]).To(Equal([]any{}))
	})

	It("should surface the error field of a failed response", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, `{"error":"model overloaded"}`)
		}

		_, err := agent.NewHTTPSource(server.URL).Stream(context.Background(), agent.Request{Message: "hi"})

		var statusErr *agent.StatusError
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.StatusCode).To(Equal(http.StatusBadGateway))
		Expect(statusErr.Message).To(Equal("model overloaded"))
		Expect(err.Error()).To(Equal("agent returned 502: model overloaded"))
	})

	It("should fall back to the raw body", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "no such route", http.StatusNotFound)
		}

		_, err := agent.NewHTTPSource(server.URL).Stream(context.Background(), agent.Request{Message: "hi"})

		Expect(err).To(MatchError("agent returned 404: no such route"))
	})

	It("should wrap transport failures", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {}
		url := server.URL
		server.Close()

		_, err := agent.NewHTTPSource(url, agent.WithTimeout(time.Second)).Stream(context.Background(), agent.Request{Message: "hi"})

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(HavePrefix("agent request failed"))
	})
})

var _ = Describe("NewSource", func() {
	It("should build an HTTP source by default", func() {
		src, err := agent.NewSource(config.AgentConfig{URL: "http://localhost:8787"})
		Expect(err).ToNot(HaveOccurred())
		Expect(src).To(BeAssignableToTypeOf(&agent.HTTPSource{}))
		Expect(agent.DecoderOptions(src)).To(BeEmpty())
	})

	It("should build an Ollama model source", func() {
		src, err := agent.NewSource(config.AgentConfig{Provider: "ollama", URL: "http://localhost:11434", Model: "qwen3:latest"})
		Expect(err).ToNot(HaveOccurred())
		Expect(src).To(BeAssignableToTypeOf(&agent.ModelSource{}))
		Expect(agent.DecoderOptions(src)).To(HaveLen(1))
	})

	It("should reject unknown providers", func() {
		_, err := agent.NewSource(config.AgentConfig{Provider: "carrier-pigeon"})
		Expect(err).To(MatchError(ContainSubstring("carrier-pigeon")))
	})
})
