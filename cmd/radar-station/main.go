// Command radar-station reads scanner samples from a serial-connected
// microcontroller and serves the latest one over HTTP and websocket.
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"

	"github.com/luhtfiimanal/go-radar-station/serial"
	"github.com/luhtfiimanal/go-radar-station/server"
	"github.com/luhtfiimanal/go-radar-station/station"
)

// settleDelay gives the board time to finish its reset after the port opens;
// opening the port toggles DTR on most Arduino-style boards.
const settleDelay = time.Second

func main() {
	cfg := loadConfig()

	snapshot := station.NewSnapshot()
	stats := station.NewStats(time.Now())
	hub := server.NewHub()
	go hub.Run()

	if cfg.Device == "" {
		log.Printf("no serial device configured, serving zero reading")
	} else {
		// The device is opened exactly once, here; the reader goroutine is
		// its only user and runs for the life of the process.
		port, err := serial.Open(serial.Config{
			Device:    cfg.Device,
			BaudRate:  cfg.Baud,
			Delimiter: "\n",
		})
		if err != nil {
			log.Fatalf("open serial device: %v", err)
		}
		time.Sleep(settleDelay)

		go station.NewReader(port, snapshot, stats, hub).Run()
		log.Printf("reading %s at %d baud", cfg.Device, cfg.Baud)
	}

	srv := server.New(snapshot, stats, hub)
	handler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET"}),
	)(srv.Router())
	if cfg.Debug {
		handler = handlers.LoggingHandler(os.Stdout, handler)
	}

	log.Printf("radar station listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, handler))
}
