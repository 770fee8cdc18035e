package wire

import jsoniter "github.com/json-iterator/go"


//=========================================== Wire Envelope


var codec = jsoniter.ConfigCompatibleWithStandardLibrary

/*
	build an envelope of the given kind around an encoded payload

	the payload travels as raw json inside the envelope, so the frame layer stays
	agnostic of the kind specific content. token and lamport are stamped by the
	caller right before the envelope is written
*/

func NewEnvelope [T any](kind MessageKind, payload T) (*Envelope, error) {
	encoded, encErr := codec.Marshal(payload)
	if encErr != nil { return nil, encErr }

	return &Envelope{
		Kind: kind,
		Payload: encoded,
	}, nil
}

/*
	empty envelope for kinds that carry no payload (AUTH_FAIL, STATUS_REPLY on miss)
*/

func NewEmptyEnvelope(kind MessageKind) *Envelope {
	return &Envelope{
		Kind: kind,
	}
}

/*
	PayloadAs:
		decode the raw payload into the type the kind dictates

		a kind/payload mismatch surfaces here as an unmarshal error instead of a
		runtime cast further in
*/

func PayloadAs [T any](env *Envelope) (T, error) {
	var decoded T
	if len(env.Payload) == 0 || string(env.Payload) == "null" { return decoded, nil }

	decodeErr := codec.Unmarshal(env.Payload, &decoded)
	if decodeErr != nil { return decoded, decodeErr }

	return decoded, nil
}

/*
	HasPayload:
		true when the envelope carries a non null payload
*/

func HasPayload(env *Envelope) bool {
	return len(env.Payload) > 0 && string(env.Payload) != "null"
}
