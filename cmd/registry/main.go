package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/rpc"
	"os"
	"os/signal"
	"syscall"

	dslvl "github.com/ipfs/go-ds-leveldb"

	registryCore "github.com/modelvault/modelvault/core/registry"
	"github.com/modelvault/modelvault/lib/logger"
)

var log, _ = logger.New("registry")

func main() {
	if err := run(); err != nil {
		log.Fatalln("startup", "ERROR", err)
	}
}

func run() error {
	cfg, err := registryCore.GetConfig()
	if err != nil {
		log.Errorw("startup", "error", "config error")
		return err
	}

	store, err := dslvl.NewDatastore(cfg.Store.Path, nil)
	if err != nil {
		log.Errorw("startup", "error", "datastore open failed", "path", cfg.Store.Path)
		return err
	}
	defer store.Close()

	var oracle registryCore.GovernanceOracle
	if cfg.Oracle.Addr != "" {
		oracle = registryCore.NewRPCOracle(cfg.Oracle.Addr)
	} else {
		oracle = registryCore.NewStaticOracle()
	}

	ctx := context.Background()
	reg, err := registryCore.NewRegistry(ctx, cfg, store, oracle)
	if err != nil {
		return err
	}

	registryAPI := NewRegistryAPI(reg)
	rpc.Register(registryAPI)
	rpc.HandleHTTP()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		log.Infow("startup", "error", "net listen failed")
		return err
	}

	log.Infow("startup", "status", "registry rpc server started", "address", l.Addr().String())
	defer log.Infow("shutdown", "status", "registry rpc server stopped", "address", l.Addr().String())
	go http.Serve(l, nil)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	log.Infow("shutdown", "status", "registry rpc server stopping", "address", l.Addr().String())

	// State is snapshotted before teardown and rehydrated on the next start.
	err = reg.Snapshot(ctx)
	if err != nil {
		log.Errorw("shutdown", "error", "state snapshot failed")
		return err
	}

	return nil
}
