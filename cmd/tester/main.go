package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"chat-core/protocol"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// tester is a line oriented exerciser for the text protocol. Each input
// line is `KIND {json payload}`; the tool frames it, sends it and keeps
// printing every server frame, so unsolicited pushes from another
// tester instance show up interleaved with direct replies.
type Config struct {
	ServerAddr string `envconfig:"SERVER_ADDR" default:"localhost:9000"`
	// TESTER_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"TESTER_COLOURS" default:"true"`
}

func main() {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	conn, err := net.Dial("tcp", cfg.ServerAddr)
	if err != nil {
		log.Fatalf("Cannot connect to %s: %v", cfg.ServerAddr, err)
	}
	defer conn.Close()

	banner := fmt.Sprintf("  ====== connected to %s ======", cfg.ServerAddr)
	if cfg.Colours {
		banner = color.New(color.BgBlack, color.FgGreen).Render(banner)
	}
	fmt.Println(banner)
	fmt.Println(`Type commands as: KIND {"json":"payload"}   (example: LOGIN {"username":"alice","password":"..."})`)

	codec := protocol.NewCodec()

	// Reader goroutine: the server may push at any moment, so replies are
	// printed as they arrive rather than paired with prompts.
	go func() {
		for {
			frame, err := protocol.ReadFrame(conn)
			if err != nil {
				fmt.Println("\nConnection closed:", err)
				os.Exit(0)
			}
			resp, err := codec.DecodeResponse(frame)
			if err != nil {
				fmt.Printf("\nUndecodable frame: %v\n", err)
				continue
			}
			printResponse(cfg, resp)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), protocol.MaxFrameSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		kind, rawPayload, _ := strings.Cut(line, " ")
		body, err := buildRequest(protocol.Kind(kind), strings.TrimSpace(rawPayload))
		if err != nil {
			fmt.Println("Bad input:", err)
			continue
		}
		if err := protocol.WriteFrame(conn, body); err != nil {
			log.Fatalf("Write failed: %v", err)
		}
	}
}

func buildRequest(kind protocol.Kind, rawPayload string) ([]byte, error) {
	if rawPayload == "" {
		return json.Marshal(protocol.Request{Kind: kind})
	}
	if !json.Valid([]byte(rawPayload)) {
		return nil, fmt.Errorf("payload is not valid JSON: %s", rawPayload)
	}
	return json.Marshal(protocol.Request{Kind: kind, Payload: json.RawMessage(rawPayload)})
}

func printResponse(cfg Config, resp protocol.Response) {
	status := "OK"
	render := func(s string) string { return s }
	if cfg.Colours {
		render = func(s string) string { return color.Green.Render(s) }
	}
	if !resp.OK {
		status = "FAIL"
		if cfg.Colours {
			render = func(s string) string { return color.Red.Render(s) }
		}
	}
	if isPush(resp.Message) {
		status = "PUSH"
		if cfg.Colours {
			render = func(s string) string { return color.Yellow.Render(s) }
		}
	}

	out := fmt.Sprintf("<- [%s] %s", status, resp.Message)
	if len(resp.Data) > 0 {
		out += "\n" + indentJSON(resp.Data)
	}
	fmt.Println(render(out))
}

func isPush(message string) bool {
	switch message {
	case protocol.PushNewMessage, protocol.PushIncomingCall,
		protocol.PushUserOnline, protocol.PushUserOffline:
		return true
	}
	return false
}

func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "   ", "  "); err != nil {
		return "   " + string(raw)
	}
	return "   " + buf.String()
}
