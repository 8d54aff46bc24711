package agent_test

import (
	"context"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tmc/langchaingo/schema"

	"github.com/killallgit/easel/pkg/agent"
	"github.com/killallgit/easel/pkg/canvas"
	"github.com/killallgit/easel/pkg/chat"
	"github.com/killallgit/easel/pkg/process"
	"github.com/killallgit/easel/pkg/reconcile"
	"github.com/killallgit/easel/pkg/testutil"
	"github.com/killallgit/easel/pkg/testutil/fixtures"
)

var _ = Describe("ModelSource", func() {
	It("should stream model output as the body", func() {
		model := testutil.NewStreamingFakeLLM(`{"type":"crea`, `te","shapeId":"shape1",`, `"shapeType":"star"}`+"\n")
		src := agent.NewModelSource(model)

		body, err := src.Stream(context.Background(), agent.Request{Message: "a star"})
		Expect(err).ToNot(HaveOccurred())
		defer body.Close()

		data, err := io.ReadAll(body)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal(`{"type":"create","shapeId":"shape1","shapeType":"star"}` + "\n"))
	})

	It("should send the protocol, history and canvas to the model", func() {
		model := testutil.NewFakeLLM("")
		src := agent.NewModelSource(model)

		body, err := src.Stream(context.Background(), agent.Request{
			Message: "connect them",
			History: []chat.Message{chat.NewUserMessage("two boxes"), chat.NewAssistantMessage("Drew two boxes.")},
			Shapes:  []agent.WireShape{{ID: "shape1", Type: "rectangle"}},
		})
		Expect(err).ToNot(HaveOccurred())
		_, _ = io.ReadAll(body)
		body.Close()

		messages := model.GetLastMessages()
		Expect(messages).To(HaveLen(4))
		Expect(messages[0].Role).To(Equal(schema.ChatMessageTypeSystem))
		Expect(testutil.TextOf(messages[0])).To(ContainSubstring(`"type":"create"`))
		Expect(messages[1].Role).To(Equal(schema.ChatMessageTypeHuman))
		Expect(messages[2].Role).To(Equal(schema.ChatMessageTypeAI))
		Expect(testutil.TextOf(messages[2])).To(Equal("Drew two boxes."))
		Expect(testutil.TextOf(messages[3])).To(ContainSubstring(`"id":"shape1"`))
		Expect(testutil.TextOf(messages[3])).To(HaveSuffix("connect them"))
	})

	It("should surface generation failures as a read error", func() {
		model := testutil.NewFakeLLM("partial")
		model.SetErrorOnCall(1, "model unloaded")
		src := agent.NewModelSource(model)

		body, err := src.Stream(context.Background(), agent.Request{Message: "hi"})
		Expect(err).ToNot(HaveOccurred())
		defer body.Close()

		data, err := io.ReadAll(body)
		Expect(string(data)).To(Equal("partial"))
		Expect(err).To(MatchError(ContainSubstring("model unloaded")))
	})

	It("should drive a session end to end", func() {
		model := testutil.NewFakeLLM(fixtures.NDJSON(
			`{"type":"create","shapeId":"shape1","shapeType":"note","text":"hi"}`,
			`{"type":"message","content":"Left you a note."}`,
		))
		src := agent.NewModelSource(model)
		doc := canvas.NewDocument()
		session := reconcile.NewSession(doc, reconcile.WithDecoderOptions(agent.DecoderOptions(src)...))

		body, err := src.Stream(context.Background(), agent.Request{Message: "leave a note"})
		Expect(err).ToNot(HaveOccurred())
		defer body.Close()

		res, err := session.Run(context.Background(), body, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(res.State).To(Equal(process.StateFinished))
		Expect(res.Message).To(Equal("Left you a note."))
		Expect(doc.Len()).To(Equal(1))
	})
})

var _ = Describe("ModelSource output without a final newline", func() {
	It("should terminate the last line so the closing message is applied", func() {
		model := testutil.NewStreamingFakeLLM(
			`{"type":"create","shapeId":"shape1","shapeType":"note","text":"hi"}`+"\n",
			`{"type":"message","content":"Left you a note."}`,
		)
		src := agent.NewModelSource(model)
		doc := canvas.NewDocument()
		session := reconcile.NewSession(doc, reconcile.WithDecoderOptions(agent.DecoderOptions(src)...))

		body, err := src.Stream(context.Background(), agent.Request{Message: "leave a note"})
		Expect(err).ToNot(HaveOccurred())
		defer body.Close()

		res, err := session.Run(context.Background(), body, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(res.State).To(Equal(process.StateFinished))
		Expect(res.Message).To(Equal("Left you a note."))
		Expect(res.Stats.Malformed).To(BeZero())
		Expect(doc.Len()).To(Equal(1))
	})

	It("should not add a newline when the model already ended with one", func() {
		model := testutil.NewStreamingFakeLLM(`{"type":"message","content":"ok"}` + "\n")
		body, err := agent.NewModelSource(model).Stream(context.Background(), agent.Request{Message: "hi"})
		Expect(err).ToNot(HaveOccurred())
		defer body.Close()

		data, err := io.ReadAll(body)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal(`{"type":"message","content":"ok"}` + "\n"))
	})
})

var _ = Describe("DescribeCanvas", func() {
	It("should list shapes under stable wire ids", func() {
		doc := canvas.NewDocument()
		session := reconcile.NewSession(doc)
		Expect(doc.CreateShape(canvas.Shape{
			ID: "shape:existing", Type: "geo", X: 10, Y: 20,
			Props: map[string]any{"geo": "ellipse", "w": 50.0, "h": 40.0, "color": "red", "richText": canvas.ToRichText("Hub")},
		})).To(Succeed())
		Expect(doc.CreateShape(canvas.Shape{
			ID: "shape:note", Type: "note",
			Props: map[string]any{"richText": canvas.ToRichText("todo")},
		})).To(Succeed())

		shapes := agent.DescribeCanvas(doc, session.IDs())

		Expect(shapes).To(Equal([]agent.WireShape{
			{ID: "shape1", Type: "ellipse", X: 10, Y: 20, Width: 50, Height: 40, Color: "red", Text: "Hub"},
			{ID: "shape2", Type: "note", Text: "todo"},
		}))
		Expect(agent.DescribeCanvas(doc, session.IDs())).To(Equal(shapes))

		native, ok := session.IDs().Lookup("shape1")
		Expect(ok).To(BeTrue())
		Expect(native).To(Equal("shape:existing"))
	})
})
