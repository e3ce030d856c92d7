// Carpick Engine - Used Vehicle Recommendation Core
// Copyright 2026 Carpick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/carpick/engine

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/carpick/engine/internal/config"
)

// transport bundles the publisher/subscriber pair for a pipeline together
// with whatever needs closing behind them.
type transport struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	embedded   *server.Server
}

// newTransport builds the configured transport. The gochannel transport is
// a single in-process pubsub shared by publisher and subscriber.
func newTransport(cfg config.EventsConfig, logger watermill.LoggerAdapter) (*transport, error) {
	switch cfg.Transport {
	case "", "gochannel":
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, logger)
		return &transport{publisher: ch, subscriber: ch}, nil
	case "nats":
		return newNATSTransport(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown events transport %q", cfg.Transport)
	}
}

// newNATSTransport connects a JetStream publisher and a durable queue
// subscriber, starting an embedded server first when configured.
func newNATSTransport(cfg config.EventsConfig, logger watermill.LoggerAdapter) (*transport, error) {
	url := cfg.NATS.URL
	var embedded *server.Server

	if cfg.NATS.EmbeddedServer {
		ns, err := startEmbeddedServer(cfg.NATS)
		if err != nil {
			return nil, err
		}
		embedded = ns
		url = ns.ClientURL()
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("nats disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("nats reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		shutdownEmbedded(embedded)
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.NATS.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			DurablePrefix: cfg.NATS.DurableName,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.MaxDeliver(5),
				natsgo.AckWait(30 * time.Second),
				natsgo.DeliverNew(),
			},
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		shutdownEmbedded(embedded)
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	return &transport{publisher: pub, subscriber: sub, embedded: embedded}, nil
}

// startEmbeddedServer runs an in-process NATS server with JetStream for
// single-node deployments.
func startEmbeddedServer(cfg config.NATSConfig) (*server.Server, error) {
	opts := &server.Options{
		ServerName: "carpick-events",
		Host:       "127.0.0.1",
		Port:       -1, // random free port
		JetStream:  true,
		StoreDir:   cfg.StoreDir,
		NoLog:      true,
		MaxPayload: 1 << 20,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded nats server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded nats server not ready within timeout")
	}
	return ns, nil
}

func shutdownEmbedded(ns *server.Server) {
	if ns == nil {
		return
	}
	ns.Shutdown()
	ns.WaitForShutdown()
}

// Close shuts the transport down, publisher first so no new messages race
// the closing subscriber.
func (t *transport) Close() error {
	var firstErr error
	if err := t.publisher.Close(); err != nil {
		firstErr = err
	}
	// gochannel is a single object; closing it twice is safe but pointless.
	if any(t.subscriber) != any(t.publisher) {
		if err := t.subscriber.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	shutdownEmbedded(t.embedded)
	return firstErr
}
