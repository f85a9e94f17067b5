package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/VoiceStats/internal/adapters/http"
	"github.com/dkeye/VoiceStats/internal/adapters/monitor"
	"github.com/dkeye/VoiceStats/internal/adapters/rtc"
	"github.com/dkeye/VoiceStats/internal/adapters/session"
	"github.com/dkeye/VoiceStats/internal/adapters/signal"
	"github.com/dkeye/VoiceStats/internal/config"
	"github.com/dkeye/VoiceStats/internal/core"
	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/dkeye/VoiceStats/internal/metrics"
	"github.com/dkeye/VoiceStats/internal/telemetry"
)

const micTrackID domain.TrackID = "mic"

func main() {
	ctx, cancel := ossignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	topology, ok := domain.ParseTopology(cfg.Room.Topology)
	if !ok {
		log.Fatal().Str("topology", cfg.Room.Topology).Msg("unknown topology")
	}
	if err := signal.CheckTopology(topology); err != nil {
		log.Fatal().Err(err).Str("topology", cfg.Room.Topology).Msg("unsupported topology")
	}
	identity := cfg.Room.Identity
	if identity == "" {
		identity = uuid.NewString()
	}
	local, err := domain.NewParticipant(identity, cfg.Room.Alias)
	if err != nil {
		log.Fatal().Err(err).Msg("local participant")
	}

	m := metrics.New(cfg.Metrics.Namespace)
	mon, closeMonitor := buildMonitor(ctx, cfg, identity)
	metered := monitor.NewMetered(mon, m)

	room := session.NewRoom(domain.RoomName(cfg.Room.Name), topology, local)
	conn, err := rtc.NewWebRTCConnection(rtc.Config(cfg.ICEServers), "")
	if err != nil {
		log.Fatal().Err(err).Msg("peer connection")
	}
	room.AddConnection(conn)

	binder, err := telemetry.Attach(room, metered, telemetry.AttachOptions{})
	if err != nil {
		log.Fatal().Err(err).Msg("attach telemetry")
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		room.Run(ctx)
	}()

	publishMicrophone(conn, room, binder, identity)

	receivers := rtc.NewReceivers(m)
	conn.OnTrack(receivers.Start)
	conn.OnFailed(binder.ReportError)
	conn.OnClosed(func() {
		room.Disconnect(domain.NewSessionError(domain.CodeMediaConnectionError, "peer connection closed"))
	})
	if err := conn.Start(ctx); err != nil {
		log.Error().Err(err).Msg("webrtc start")
	}

	sig := joinRoom(ctx, cfg, room, conn, binder)

	r := router.SetupRouter(cfg, router.Deps{
		Binder:    binder,
		Tracks:    room.Local(),
		Receivers: receivers,
		Metrics:   m,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("room", cfg.Room.Name).Msg("VoiceStats started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}()

	select {
	case <-ctx.Done():
	case <-room.Done():
	}
	log.Info().Msg("Shutting down")

	if sig != nil {
		sig.Close()
	}
	room.Disconnect(nil)
	<-loopDone
	receivers.StopAll()
	room.Manager().CloseAll()
	closeMonitor()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// buildMonitor dials the collector, or logs calls when none is configured.
func buildMonitor(ctx context.Context, cfg *config.Config, identity string) (core.Monitor, func()) {
	if cfg.Monitor.URL == "" {
		log.Info().Msg("no collector configured, logging monitor calls")
		return monitor.NewLogMonitor(), func() {}
	}
	client, err := monitor.Dial(ctx, monitor.Config{
		URL:          cfg.Monitor.URL,
		AppID:        cfg.Monitor.AppID,
		AppSecret:    cfg.Monitor.AppSecret,
		UserID:       identity,
		Alias:        cfg.Room.Alias,
		SendBuffer:   cfg.Monitor.SendBuffer,
		WriteTimeout: cfg.Monitor.WriteTimeout,
		PingPeriod:   cfg.Monitor.PingPeriod,
		AckTimeout:   cfg.Monitor.AckTimeout,
	})
	if err != nil {
		log.Error().Err(err).Msg("collector unavailable, logging monitor calls")
		return monitor.NewLogMonitor(), func() {}
	}
	return client, client.Close
}

func publishMicrophone(conn *rtc.WebRTCConnection, room *session.Room, binder *telemetry.Binder, streamID string) {
	track, err := webrtc.NewTrackLocalStaticRTP(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, string(micTrackID), streamID)
	if err != nil {
		binder.ReportObtainingLocalMediaError(err)
		return
	}
	if _, err := conn.AddLocalTrack(track); err != nil {
		binder.ReportObtainingLocalMediaError(err)
		return
	}
	if err := room.Local().Publish(domain.NewTrack(micTrackID, domain.TrackKindAudio)); err != nil {
		log.Error().Err(err).Msg("publish microphone")
	}
}

// joinRoom connects to the SFU, joins the room and sends the offer. Failures
// that prevent joining end the room with their cause.
func joinRoom(ctx context.Context, cfg *config.Config, room *session.Room, conn *rtc.WebRTCConnection, binder *telemetry.Binder) *signal.Client {
	sig, err := signal.Dial(ctx, signal.Config{
		URL:          cfg.Signal.URL,
		PingPeriod:   cfg.Signal.PingPeriod,
		ReadLimit:    cfg.Signal.ReadLimit,
		WriteTimeout: cfg.Signal.WriteTimeout,
	}, room, conn)
	if err != nil {
		log.Error().Err(err).Msg("signal dial")
		room.Disconnect(err)
		return nil
	}
	sig.OnError(binder.ReportError)
	sig.Start(ctx)

	conn.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		if err := sig.SendCandidate(ci); err != nil {
			log.Warn().Err(err).Msg("send candidate")
		}
	})

	if err := sig.Join(room.Name(), room.Local().Alias()); err != nil {
		room.Disconnect(domain.NewSessionError(domain.CodeSignalingOutgoingMessageInvalid, err.Error()))
		return sig
	}
	offer, err := conn.CreateAndSetOffer()
	if err != nil {
		binder.ReportError(err)
		return sig
	}
	if err := sig.SendOffer(*offer); err != nil {
		binder.ReportError(domain.NewSessionError(domain.CodeSignalingOutgoingMessageInvalid, err.Error()))
	}
	return sig
}
