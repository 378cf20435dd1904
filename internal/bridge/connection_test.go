package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/foxwhite25/maabridge/internal/engine"
	"github.com/foxwhite25/maabridge/internal/engine/enginetest"
	"github.com/foxwhite25/maabridge/internal/event"
	"github.com/foxwhite25/maabridge/pkg/tasks"
)

var _ = Describe("Connection", func() {
	var (
		eng *enginetest.Engine
		fs  afero.Fs
		bus *event.Bus
		ctx context.Context

		cancel context.CancelFunc
	)

	newBuilder := func() *Builder {
		return NewBuilder(eng, "/maa", "127.0.0.1:5555").
			WithAdbPath("/usr/bin/adb").
			WithFs(fs).
			WithBus(bus).
			WithLogger(zerolog.Nop())
	}

	BeforeEach(func() {
		eng = enginetest.New()
		fs = afero.NewMemMapFs()
		Expect(afero.WriteFile(fs, "/maa/resource/item_index.json",
			[]byte(`{"30012":{"classifyType":"MATERIAL","icon":"x","name":"Orirock Cube","sortId":1}}`), 0o644)).To(Succeed())
		bus = event.NewBus()
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	})

	AfterEach(func() {
		cancel()
		bus.Close()
	})

	Describe("Build", func() {
		It("connects and reaches the connected state", func() {
			conn, err := newBuilder().Build(ctx)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Destroy()

			Expect(conn.State()).To(Equal(StateConnected))
			Expect(conn.Target()).To(Equal("127.0.0.1:5555"))
			Expect(conn.Version()).To(Equal("v4.10.0-test"))
			Expect(conn.Items().Name("30012")).To(Equal("Orirock Cube"))

			inst := eng.Last()
			Expect(inst.Token()).To(Equal(conn.Session()))
			Expect(inst.Connects()).To(ConsistOf(enginetest.ConnectCall{
				AdbPath: "/usr/bin/adb",
				Address: "127.0.0.1:5555",
				Config:  DefaultAdbConfig,
				Block:   true,
			}))
		})

		It("resolves a result delivered from another thread", func() {
			eng.ConnectAsync = true
			eng.ConnectID = 42

			conn, err := newBuilder().Build(ctx)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Destroy()
			Expect(conn.State()).To(Equal(StateConnected))
			Expect(conn.Table().Len()).To(Equal(0))
		})

		It("loads resources in order and sets the user dir", func() {
			conn, err := newBuilder().
				WithWorkDir("/var/maa").
				WithIncrementalPath("/maa/cache").
				Build(ctx)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Destroy()

			Expect(eng.UserDir()).To(Equal("/var/maa"))
			Expect(eng.Loaded()).To(Equal([]string{"/maa", "/maa/cache"}))
		})

		It("applies options in key order", func() {
			conn, err := newBuilder().
				WithOptions(Options{TouchMode: TouchMaaTouch, AdbLiteEnabled: true}).
				Build(ctx)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Destroy()

			Expect(eng.Last().Options()).To(Equal([]enginetest.OptionCall{
				{Key: engine.OptionTouchMode, Value: "maatouch"},
				{Key: engine.OptionDeploymentWithPause, Value: "0"},
				{Key: engine.OptionAdbLiteEnabled, Value: "1"},
				{Key: engine.OptionKillAdbOnExit, Value: "0"},
			}))
		})

		It("fails without an item index before creating a handle", func() {
			_, err := newBuilder().WithFs(afero.NewMemMapFs()).Build(ctx)
			Expect(errors.Is(err, ErrItemIndexMissing)).To(BeTrue())
			Expect(eng.Instances()).To(BeEmpty())
		})

		It("fails when resources cannot be loaded", func() {
			eng.RejectLoad["/maa"] = true
			_, err := newBuilder().Build(ctx)
			Expect(errors.Is(err, engine.ErrRejected)).To(BeTrue())
			Expect(eng.Instances()).To(BeEmpty())
		})

		It("fails on a null handle", func() {
			eng.NullHandle = true
			_, err := newBuilder().Build(ctx)
			Expect(errors.Is(err, engine.ErrNullHandle)).To(BeTrue())
		})

		It("destroys the handle when an option is rejected", func() {
			eng.RejectOption[engine.OptionAdbLiteEnabled] = true
			_, err := newBuilder().Build(ctx)
			Expect(errors.Is(err, ErrOptionRejected)).To(BeTrue())

			inst := eng.Last()
			Expect(inst.Destroyed()).To(Equal(1))
			Expect(inst.Connects()).To(BeEmpty())
		})

		It("fails when the engine refuses to connect", func() {
			eng.ConnectID = 0
			_, err := newBuilder().Build(ctx)
			Expect(errors.Is(err, ErrConnectRejected)).To(BeTrue())
			Expect(eng.Last().Destroyed()).To(Equal(1))
		})

		It("fails when the connection result is false", func() {
			eng.ConnectResult = false
			_, err := newBuilder().Build(ctx)
			Expect(errors.Is(err, ErrConnectFailed)).To(BeTrue())
			Expect(eng.Last().Destroyed()).To(Equal(1))
		})

		It("reports a result of unexpected shape", func() {
			eng.ConnectResult = "maybe"
			_, err := newBuilder().Build(ctx)

			var resultErr *ResultError
			Expect(errors.As(err, &resultErr)).To(BeTrue())
			Expect(resultErr.Value).To(Equal("maybe"))
			Expect(eng.Last().Destroyed()).To(Equal(1))
		})

		It("gives up when the context ends before the result", func() {
			eng.ConnectResult = nil
			short, stop := context.WithTimeout(ctx, 50*time.Millisecond)
			defer stop()

			_, err := newBuilder().Build(short)
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
			Expect(eng.Last().Destroyed()).To(Equal(1))
		})

		It("fails when adb cannot be found", func() {
			b := newBuilder().WithAdbPath("")
			b.lookPath = func(string) (string, error) { return "", errors.New("not on PATH") }

			_, err := b.Build(ctx)
			Expect(errors.Is(err, ErrAdbNotFound)).To(BeTrue())
			Expect(eng.Last().Destroyed()).To(Equal(1))
		})
	})

	Describe("operations", func() {
		var conn *Connection

		BeforeEach(func() {
			var err error
			conn, err = newBuilder().Build(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			conn.Destroy()
		})

		It("appends typed tasks", func() {
			sub, err := conn.Append(tasks.NewFight().Stage("1-7").Medicine(1))
			Expect(err).NotTo(HaveOccurred())
			id, ok := sub.ID()
			Expect(ok).To(BeTrue())

			appended := eng.Last().Appended()
			Expect(appended).To(HaveLen(1))
			Expect(appended[0].ID).To(Equal(id))
			Expect(appended[0].Kind).To(Equal("Fight"))

			var params map[string]any
			Expect(json.Unmarshal(appended[0].Params, &params)).To(Succeed())
			Expect(params).To(HaveKeyWithValue("stage", "1-7"))
			Expect(params).To(HaveKeyWithValue("medicine", BeNumerically("==", 1)))
		})

		It("reports a rejected task", func() {
			eng.RejectAppend = true
			_, err := conn.Append(tasks.NewAward())
			Expect(errors.Is(err, tasks.ErrAppendRejected)).To(BeTrue())
		})

		It("starts, stops and reports running", func() {
			Expect(conn.Start()).To(Succeed())
			Expect(conn.Running()).To(BeTrue())
			Expect(conn.Stop()).To(Succeed())
			Expect(conn.Running()).To(BeFalse())
		})

		It("records the device uuid", func() {
			eng.Last().Emit(engine.ConnectionInfo,
				`{"what":"UuidGot","uuid":"emulator-5554","details":{"adb":"adb","address":"127.0.0.1:5555","config":"General"}}`)

			Eventually(func() string {
				uuid, _ := conn.UUID()
				return uuid
			}).Should(Equal("emulator-5554"))
		})

		It("waits until all tasks completed", func() {
			Expect(conn.Start()).To(Succeed())

			done := make(chan error, 1)
			go func() { done <- conn.WaitIdle(ctx) }()

			Consistently(done, 100*time.Millisecond).ShouldNot(Receive())
			eng.Last().Emit(engine.AllTasksCompleted, `{"taskchain":"Fight","uuid":"u","finished_tasks":[1]}`)
			Eventually(done).Should(Receive(BeNil()))
		})

		It("stops waiting when the engine is no longer running", func() {
			Expect(conn.Start()).To(Succeed())
			eng.Last().SetRunning(false)
			Expect(conn.WaitIdle(ctx)).To(Succeed())
		})

		It("keeps dispatching after undecodable notifications", func() {
			inst := eng.Last()
			inst.EmitRaw(31337, []byte(`{}`))
			inst.EmitRaw(int32(engine.ConnectionInfo), []byte(`not json`))
			inst.Emit(engine.ConnectionInfo, `{"what":"UuidGot","uuid":"after","details":{"adb":"","address":"","config":""}}`)

			Eventually(func() string {
				uuid, _ := conn.UUID()
				return uuid
			}).Should(Equal("after"))
		})
	})

	Describe("Destroy", func() {
		It("is idempotent", func() {
			conn, err := newBuilder().Build(ctx)
			Expect(err).NotTo(HaveOccurred())

			conn.Destroy()
			conn.Destroy()
			Expect(conn.Close()).To(Succeed())

			Expect(eng.Last().Destroyed()).To(Equal(1))
			Expect(conn.State()).To(Equal(StateDestroyed))
			Eventually(conn.dispatch.done).Should(BeClosed())
		})

		It("returns while the engine keeps calling back during teardown", func() {
			eng.DestroyEmits = channelBuffer * 2
			conn, err := newBuilder().Build(ctx)
			Expect(err).NotTo(HaveOccurred())

			done := make(chan struct{})
			go func() {
				defer close(done)
				conn.Destroy()
			}()
			Eventually(done, 10*time.Second).Should(BeClosed())
			Expect(eng.Last().Destroyed()).To(Equal(1))
		})

		It("rejects operations afterwards", func() {
			conn, err := newBuilder().Build(ctx)
			Expect(err).NotTo(HaveOccurred())
			conn.Destroy()

			_, err = conn.AppendTask("Fight", []byte(`{}`))
			Expect(errors.Is(err, ErrDestroyed)).To(BeTrue())
			Expect(errors.Is(conn.Start(), ErrDestroyed)).To(BeTrue())
			Expect(errors.Is(conn.Stop(), ErrDestroyed)).To(BeTrue())
			Expect(conn.Running()).To(BeFalse())
			Expect(errors.Is(conn.WaitIdle(ctx), ErrDestroyed)).To(BeTrue())
		})

		It("releases the event channel so a new connection gets a fresh one", func() {
			first, err := newBuilder().Build(ctx)
			Expect(err).NotTo(HaveOccurred())
			ch := first.channel
			first.Destroy()

			Expect(ch.Send(sentinelEvent(1))).To(BeFalse())

			second, err := newBuilder().Build(ctx)
			Expect(err).NotTo(HaveOccurred())
			defer second.Destroy()
			Expect(second.channel).NotTo(BeIdenticalTo(ch))
		})
	})
})
