package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"learnhub/pkg/models"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9090", "progress feed address")
	raw := flag.Bool("raw", false, "print events as received")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println("Connected to progress feed:", *addr)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		if *raw {
			fmt.Println(sc.Text())
			continue
		}
		var evt models.ProgressUpdate
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			fmt.Println("?", sc.Text())
			continue
		}
		fmt.Println(format(evt))
	}
	fmt.Println("Disconnected.")
}

func format(evt models.ProgressUpdate) string {
	ts := time.Unix(evt.Timestamp, 0).Format(time.TimeOnly)
	switch evt.Type {
	case "purchase":
		return fmt.Sprintf("%s user=%s bought %q", ts, evt.UserID, evt.Course)
	case "progress":
		return fmt.Sprintf("%s user=%s %s/%s = %s", ts, evt.UserID, evt.Language, evt.LessonID, evt.Completed)
	default:
		return fmt.Sprintf("%s user=%s %s", ts, evt.UserID, evt.Type)
	}
}
