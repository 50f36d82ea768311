package main

import (
	"context"
	"flag"
	"log"
	"strconv"
	"sync"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/bus"
	"main/internal/clock"
	"main/internal/exec"
	"main/internal/journal"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/order"
	"main/internal/risk"
	"main/pkg/conn"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	orderCount := flag.Int("order-count", 1, "Number of sample orders to submit")
	orderInterval := flag.Duration("order-interval", 0, "Delay between sample orders")

	replayDir := flag.String("replay-dir", "", "Journal directory for replay mode")
	replayPrefix := flag.String("replay-prefix", "", "Journal file prefix (default: journal)")
	replaySpeed := flag.Float64("replay-speed", 0, "Playback speed (1=real-time, 0=no pacing)")
	replayUseRecv := flag.Bool("replay-use-recv-time", false, "Use receive timestamp for pacing")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sys.Shutdown()
		cancel()
	}()

	if *replayDir != "" {
		cfg := journal.PlaybackConfig{
			Dir:         *replayDir,
			FilePrefix:  *replayPrefix,
			Speed:       *replaySpeed,
			UseRecvTime: *replayUseRecv,
		}
		if err := runReplay(ctx, cfg); err != nil {
			log.Fatalf("replay failed: %v", err)
		}
		return
	}

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if loaded.Profiling.Enable {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: appName(loaded.Profiling.AppName),
			ServerAddress:   loaded.Profiling.ServerAddress,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	if err := run(ctx, loaded, *orderCount, *orderInterval); err != nil {
		log.Fatalf("engine failed: %v", err)
	}
}

func appName(name string) string {
	if name == "" {
		return "execution-core"
	}
	return name
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return defaultLoaded(), nil
	}
	return ops.Load(path)
}

func defaultLoaded() ops.Loaded {
	return ops.Loaded{
		TraderID:      "TRADER-001",
		QueueCapacity: 1024,
		Risk: risk.Config{
			MaxOrderQty:      1_000,
			MaxOrderNotional: 1_000_000,
			MaxPosition:      5_000,
		},
		Instruments: []ops.Instrument{
			{ID: "ETHUSDT-PERP.SIM", PriceScale: 2, QtyScale: 0},
		},
	}
}

func run(ctx context.Context, loaded ops.Loaded, orderCount int, orderInterval time.Duration) error {
	clk := clock.NewSystem()
	b := bus.New()
	queue := bus.NewQueue(loaded.QueueCapacity)
	cache := exec.NewMemCache()
	metrics := obs.NewMetrics()
	seqGen := obs.NewSequenceGenerator(0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.Run(ctx, b)
	}()

	var writer *journal.Writer
	if loaded.JournalEnabled {
		w, err := journal.NewWriter(loaded.Journal)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		writer = w
		tap := journal.NewTap(w, seqGen, clk, "events.order.*")
		if err := tap.Attach(b); err != nil {
			return err
		}
	}

	var store *journal.PgStore
	if loaded.Postgres.Enable {
		client, err := conn.New(conn.Option{
			Host:     loaded.Postgres.Host,
			Port:     loaded.Postgres.Port,
			User:     loaded.Postgres.User,
			Password: loaded.Postgres.Password,
			Database: loaded.Postgres.Database,
			SSLMode:  loaded.Postgres.SSLMode,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		store, err = journal.NewPgStore(client)
		if err != nil {
			return err
		}
	}

	gateway, err := exec.NewSimGateway(exec.SimGatewayConfig{
		Clock: clk,
		Sink: func(e order.Event) {
			o, ok := cache.Order(e.ClientOrderID)
			if !ok {
				logs.Errorf("venue event for unknown order %s", e.ClientOrderID)
				return
			}
			if err := o.Apply(e); err != nil {
				logs.Errorf("apply %s to %s: %v", e.Kind, o.ClientOrderID, err)
				return
			}
			topic := exec.TopicOrderEvents(o.StrategyID, o.InstrumentID)
			if err := queue.TryPublish(bus.Message{Topic: topic, Payload: e}); err != nil {
				metrics.IncQueueDrop()
				logs.Errorf("enqueue %s for %s: %v", e.Kind, o.ClientOrderID, err)
			}
		},
		ResendOnReconnect: true,
	})
	if err != nil {
		return err
	}

	client, err := exec.NewClient(gateway, b, clk, cache)
	if err != nil {
		return err
	}

	manager, err := exec.NewManager(exec.ManagerConfig{
		Clock:       clk,
		Cache:       cache,
		Bus:         b,
		ActiveLocal: loaded.ActiveLocal,
		CancelHandler: func(o *order.Order) {
			client.Cancel(exec.CancelOrder{
				ClientOrderID: o.ClientOrderID,
				VenueOrderID:  o.VenueOrderID,
				InstrumentID:  o.InstrumentID,
				TsInit:        clk.NowNs(),
			})
		},
		ModifyHandler: func(o *order.Order, quantity model.Quantity) {
			client.Modify(exec.ModifyOrder{
				ClientOrderID: o.ClientOrderID,
				VenueOrderID:  o.VenueOrderID,
				InstrumentID:  o.InstrumentID,
				Quantity:      &quantity,
				TsInit:        clk.NowNs(),
			})
		},
	})
	if err != nil {
		return err
	}

	riskEngine := risk.NewBusEngine(risk.NewEngine(loaded.Risk), b, clk)
	if err := riskEngine.Register(); err != nil {
		return err
	}

	if err := b.Register(exec.EndpointExecExecute, bus.HandlerFunc("ExecEngine.execute", func(msg any) {
		switch cmd := msg.(type) {
		case exec.SubmitOrder:
			client.Submit(cmd)
		case exec.CancelOrder:
			client.Cancel(cmd)
		case exec.ModifyOrder:
			client.Modify(cmd)
		default:
			logs.Errorf("unhandled execution command %T", msg)
		}
	})); err != nil {
		return err
	}
	if err := b.Register(exec.EndpointExecProcess, bus.HandlerFunc("ExecEngine.process", func(msg any) {
		if e, ok := msg.(order.Event); ok {
			logs.Infof("position event %s for %s", e.Kind, e.ClientOrderID)
		}
	})); err != nil {
		return err
	}
	if err := b.Register(exec.EndpointUpdateAccount, bus.HandlerFunc("Portfolio.update_account", func(msg any) {
		if state, ok := msg.(exec.AccountState); ok {
			logs.Infof("account update for %s", state.AccountID)
		}
	})); err != nil {
		return err
	}

	if err := b.Subscribe("events.order.*", bus.HandlerFunc("engine.events", func(msg any) {
		e, ok := msg.(order.Event)
		if !ok {
			return
		}
		metrics.ObserveEvent(e.Kind, e.TsEvent, clk.NowNs())
		if e.Kind == enum.OrderEventDenied {
			metrics.IncDenyReason(e.Reason)
		}
		if store != nil {
			record := journal.Record{Seq: seqGen.Next(), TsRecv: clk.NowNs(), Event: e}
			if err := store.Insert(record); err != nil {
				logs.Errorf("persist %s for %s: %v", e.Kind, e.ClientOrderID, err)
			}
		}
		manager.HandleEvent(e)
	}), 0); err != nil {
		return err
	}

	instrument := loaded.Instruments[0]
	for i := 0; i < orderCount; i++ {
		if ctx.Err() != nil {
			break
		}

		o, err := sampleOrder(loaded.TraderID, instrument, i, clk.NowNs())
		if err != nil {
			return err
		}
		cache.AddOrder(o)
		if err := manager.CreateNewSubmitOrder(o, "", "CLIENT-001"); err != nil {
			return err
		}
		if orderInterval > 0 && i < orderCount-1 {
			time.Sleep(orderInterval)
		}
	}

	queue.Close()
	wg.Wait()

	if writer != nil {
		if err := writer.Close(); err != nil {
			return err
		}
	}

	snapshot := metrics.Snapshot()
	logs.Infof("metrics: events=%v denies=%v drops=%d closed=%d order_flow=%+v event_latency=%+v",
		snapshot.EventCounts, snapshot.DenyReasonCounts, snapshot.QueueDrops, snapshot.QueueClosed,
		snapshot.OrderFlowLatency, snapshot.EventLatency)
	return nil
}

func sampleOrder(traderID model.TraderID, instrument ops.Instrument, n int, tsInit int64) (*order.Order, error) {
	price, err := model.NewPrice(100.00, instrument.PriceScale)
	if err != nil {
		return nil, err
	}
	quantity, err := model.NewQuantity(1, instrument.QtyScale)
	if err != nil {
		return nil, err
	}
	return order.NewOrder(order.Config{
		TraderID:      traderID,
		StrategyID:    "S-001",
		InstrumentID:  instrument.ID,
		ClientOrderID: model.ClientOrderID("O-" + strconv.Itoa(n+1)),
		Side:          enum.OrderSideBuy,
		OrderType:     enum.OrderTypeLimit,
		Quantity:      quantity,
		TimeInForce:   enum.TimeInForceGTC,
		Price:         &price,
		TsInit:        tsInit,
	})
}

func runReplay(ctx context.Context, cfg journal.PlaybackConfig) error {
	pb, err := journal.NewPlayback(cfg)
	if err != nil {
		return err
	}

	counts := make(map[enum.OrderEventKind]int)
	total := 0
	err = pb.Run(ctx, func(r journal.Record) error {
		total++
		counts[r.Event.Kind]++
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("replay completed: total=%d counts=%v", total, counts)
	return nil
}
