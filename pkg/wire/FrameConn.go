package wire

import "bufio"
import "encoding/binary"
import "io"
import "net"


//=========================================== Frame Conn


/*
	wrap a connection in the length framed envelope transport

	each frame is a 4 byte big endian length followed by the json encoded envelope.
	reads are owned by the single session goroutine, writes are serialized by a per
	connection mutex so concurrent senders to the same peer cannot interleave frames
*/

func NewFrameConn(conn net.Conn) *FrameConn {
	return &FrameConn{
		conn: conn,
		reader: bufio.NewReader(conn),
	}
}

/*
	Recv:
		1.) read the 4 byte length header
		2.) reject frames above the size bound before allocating
		3.) read the body and decode the envelope
*/

func (fc *FrameConn) Recv() (*Envelope, error) {
	header := make([]byte, 4)
	if _, readErr := io.ReadFull(fc.reader, header); readErr != nil { return nil, readErr }

	length := binary.BigEndian.Uint32(header)
	if length > MaxFrameSize { return nil, ErrFrameTooLarge }

	body := make([]byte, length)
	if _, readErr := io.ReadFull(fc.reader, body); readErr != nil { return nil, readErr }

	env := &Envelope{}
	if decodeErr := codec.Unmarshal(body, env); decodeErr != nil { return nil, decodeErr }

	return env, nil
}

/*
	Send:
		encode the envelope and write header + body as a single buffer under the
		write mutex. a partial write surfaces as an error and the caller treats the
		peer as gone
*/

func (fc *FrameConn) Send(env *Envelope) error {
	body, encErr := codec.Marshal(env)
	if encErr != nil { return encErr }

	frame := make([]byte, 4 + len(body))
	binary.BigEndian.PutUint32(frame[0:4], uint32(len(body)))
	copy(frame[4:], body)

	fc.writeMutex.Lock()
	defer fc.writeMutex.Unlock()

	_, writeErr := fc.conn.Write(frame)
	return writeErr
}

func (fc *FrameConn) Close() error {
	return fc.conn.Close()
}

func (fc *FrameConn) RemoteAddr() net.Addr {
	return fc.conn.RemoteAddr()
}
