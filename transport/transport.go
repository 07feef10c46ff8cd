// Package transport implements the raw TCP request/response exchange the
// client and server speak: connect, write the JSON request body, read the
// reply, close. No framing beyond TCP's own stream boundaries and a fixed
// read buffer, matching original_source/src/net.rs.
package transport

import (
	"encoding/json"
	"io"
	"net"
)

// readBufSize is the client-side read buffer, matching net.rs's
// send_request (10*1024 bytes).
const readBufSize = 10 * 1024

// ServerReadBufSize is the per-request read buffer the server's accept
// loop uses, matching bin/server/main.rs's handle_client (10*1024*1024
// bytes — large enough for a big issuance batch in one read).
const ServerReadBufSize = 10 * 1024 * 1024

// SendRequest connects to address, writes req as a single JSON message,
// and returns whatever bytes the server writes back before the connection
// is closed.
func SendRequest(address string, req interface{}) ([]byte, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(body); err != nil {
		return nil, err
	}

	buf := make([]byte, readBufSize)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// Handler processes one request message and returns the bytes to write
// back to the client.
type Handler func(msg []byte) ([]byte, error)

// Serve accepts connections on listener and runs handler against each
// message read from a connection, writing its response back on the same
// connection, for as long as reads keep succeeding. One goroutine is
// spawned per accepted connection so a slow or hostile client can't stall
// the rest.
func Serve(listener net.Listener, handler Handler) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		go serveConn(conn, handler)
	}
}

func serveConn(conn net.Conn, handler Handler) {
	defer conn.Close()

	buf := make([]byte, ServerReadBufSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}

		resp, err := handler(buf[:n])
		if err != nil {
			return
		}
		if _, err := conn.Write(resp); err != nil {
			return
		}
	}
}
