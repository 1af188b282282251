package wonderswan

import (
	"fmt"
	"io"
	"strings"
)

// TraceRecord describes one CPU step: an executed instruction (or one
// iteration of a repeated block instruction) or a hardware interrupt entry.
type TraceRecord struct {
	PS, PC    uint16 // address of the first prefix or opcode byte
	Bytes     []byte
	Text      string
	State     CPUState // registers after execution
	Cycles    int
	Invalid   bool
	Interrupt bool
	Vector    byte
}

// TraceSink receives a record after every CPU step. The record is only
// valid for the duration of the call.
type TraceSink interface {
	Trace(rec *TraceRecord)
}

// WriterTraceSink formats records as one text line each.
type WriterTraceSink struct {
	w io.Writer
}

func NewWriterTraceSink(w io.Writer) *WriterTraceSink {
	return &WriterTraceSink{w: w}
}

func (s *WriterTraceSink) Trace(rec *TraceRecord) {
	fmt.Fprintln(s.w, rec.String())
}

// RecordingTraceSink keeps copies of every record.
type RecordingTraceSink struct {
	Records []TraceRecord
}

func (s *RecordingTraceSink) Trace(rec *TraceRecord) {
	r := *rec
	r.Bytes = append([]byte(nil), rec.Bytes...)
	s.Records = append(s.Records, r)
}

func (r *TraceRecord) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04X:%04X  ", r.PS, r.PC)

	var code strings.Builder
	for _, v := range r.Bytes {
		fmt.Fprintf(&code, "%02X", v)
	}
	fmt.Fprintf(&b, "%-14s %-28s", code.String(), r.Text)
	if r.Invalid {
		b.WriteString(" (invalid)")
	}

	s := r.State
	fmt.Fprintf(&b, " AW=%04X BW=%04X CW=%04X DW=%04X SP=%04X BP=%04X IX=%04X IY=%04X",
		s.AW(), s.BW(), s.CW(), s.DW(), s.SP(), s.BP(), s.IX(), s.IY())
	fmt.Fprintf(&b, " DS0=%04X DS1=%04X PS=%04X SS=%04X PSW=%s CYC=%d",
		s.DS0(), s.DS1(), s.PS(), s.SS(), pswString(s.PSW), r.Cycles)
	if r.Interrupt {
		fmt.Fprintf(&b, " INT=%02X", r.Vector)
	}
	return b.String()
}

// pswString renders the flags as letters, upper case when set.
func pswString(psw uint16) string {
	flags := []struct {
		bit  uint16
		name byte
	}{
		{PSWOverflow, 'v'},
		{PSWDirection, 'd'},
		{PSWInterrupt, 'i'},
		{PSWBreak, 'b'},
		{PSWSign, 's'},
		{PSWZero, 'z'},
		{PSWAuxCarry, 'a'},
		{PSWParity, 'p'},
		{PSWCarry, 'c'},
	}
	out := make([]byte, len(flags))
	for i, f := range flags {
		out[i] = f.name
		if psw&f.bit != 0 {
			out[i] -= 'a' - 'A'
		}
	}
	return string(out)
}
