package xmodem

import "testing"

func TestSenderStateString(t *testing.T) {
	tests := []struct {
		state SenderState
		want  string
	}{
		{SenderAwaitModeRequest, "AWAIT_MODE_REQUEST"},
		{SenderSendingBlock, "SENDING_BLOCK"},
		{SenderAwaitAck, "AWAIT_ACK"},
		{SenderSendEOT, "SEND_EOT"},
		{SenderAwaitEOTAck, "AWAIT_EOT_ACK"},
		{SenderDone, "DONE"},
		{SenderAborted, "ABORTED"},
		{SenderState(99), "UNKNOWN"},
	}
	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("SenderState(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}

func TestReceiverStateString(t *testing.T) {
	tests := []struct {
		state ReceiverState
		want  string
	}{
		{ReceiverRequestMode, "REQUEST_MODE"},
		{ReceiverAwaitFrame, "AWAIT_FRAME"},
		{ReceiverDone, "DONE"},
		{ReceiverAborted, "ABORTED"},
		{ReceiverState(99), "UNKNOWN"},
	}
	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("ReceiverState(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}

func TestStateTerminal(t *testing.T) {
	if SenderAwaitAck.Terminal() || ReceiverAwaitFrame.Terminal() {
		t.Error("running states reported terminal")
	}
	if !SenderDone.Terminal() || !SenderAborted.Terminal() {
		t.Error("sender terminal states not reported terminal")
	}
	if !ReceiverDone.Terminal() || !ReceiverAborted.Terminal() {
		t.Error("receiver terminal states not reported terminal")
	}
}
