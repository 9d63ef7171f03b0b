/*
Package xdnd implements both roles of the X drag-and-drop protocol,
version 5. As a source, the workbench drags file URIs out to other
applications; as a target, it accepts text/uri-list and text/plain drops
onto its canvases. Awareness probes are cached in a small LRU because a
motion burst would otherwise hammer GetProperty on the same windows.
*/
package xdnd

import (
	"strings"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/xcore"
)

// Version is the protocol version spoken and advertised.
const Version = 5

// awareCacheSize bounds the XdndAware probe cache.
const awareCacheSize = 100

// awareTTL is how long a probe result stays trustworthy.
const awareTTL = 5 * time.Second

// DropFunc receives the dropped paths and the root-space drop point.
type DropFunc func(paths []string, rootX, rootY int)

// Handler is the whole state machine, both directions.
type Handler struct {
	C *xcore.Conn

	// Proxy window owning XdndSelection when we are the source and
	// receiving the transfer when we are the target.
	Proxy xproto.Window

	OnDrop DropFunc

	// Source state.
	dragging       bool
	sourcePaths    []string
	target         xproto.Window
	targetAccepted bool

	// Target state.
	offerSource xproto.Window
	offerTypes  []xproto.Atom
	dropX       int
	dropY       int
	dropTime    xproto.Timestamp

	aware *lru.Cache // window → awareEntry
}

type awareEntry struct {
	aware bool
	when  time.Time
}

// New builds a handler and its proxy window.
func New(c *xcore.Conn, onDrop DropFunc) (*Handler, error) {
	cache, err := lru.New(awareCacheSize)
	if err != nil {
		return nil, err
	}
	proxy, err := xproto.NewWindowId(c.X)
	if err != nil {
		return nil, err
	}
	err = xproto.CreateWindowChecked(c.X, 0, proxy, c.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0,
		xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		return nil, err
	}

	h := &Handler{C: c, Proxy: proxy, OnDrop: onDrop, aware: cache}

	// Advertise target capability on the proxy and the root.
	c.ChangeProp32(proxy, "XdndAware", "ATOM", Version)
	c.ChangeProp32(c.Root, "XdndAware", "ATOM", Version)
	return h, nil
}

// AdvertiseOn marks one of our frames as a drop target.
func (h *Handler) AdvertiseOn(win xproto.Window) {
	h.C.ChangeProp32(win, "XdndAware", "ATOM", Version)
}

// --- source side -----------------------------------------------------

// StartDrag begins dragging the given file paths.
func (h *Handler) StartDrag(paths []string) {
	if h.dragging || len(paths) == 0 {
		return
	}
	h.sourcePaths = paths
	h.dragging = true
	h.target = 0
	h.targetAccepted = false
	xproto.SetSelectionOwner(h.C.X, h.Proxy, h.C.Atom("XdndSelection"),
		xproto.TimeCurrentTime)
}

// Dragging reports whether a source drag is live.
func (h *Handler) Dragging() bool {
	return h.dragging
}

// DragMotion updates the drag with a root-space pointer position.
func (h *Handler) DragMotion(rootX, rootY int) {
	if !h.dragging {
		return
	}
	target := h.findAwareAt(rootX, rootY)
	if target != h.target {
		if h.target != 0 {
			h.sendLeave(h.target)
		}
		h.target = target
		h.targetAccepted = false
		if target != 0 {
			h.sendEnter(target)
		}
	}
	if h.target != 0 {
		h.sendPosition(rootX, rootY)
	}
}

// DragDrop finishes the drag on release. Without an accepting target the
// drag just cancels.
func (h *Handler) DragDrop() {
	if !h.dragging {
		return
	}
	if h.target != 0 && h.targetAccepted {
		h.sendDrop()
	} else if h.target != 0 {
		h.sendLeave(h.target)
	}
	h.dragging = false
	h.target = 0
}

// findAwareAt walks the window tree under the pointer to the deepest
// XdndAware window, consulting the cache on each probe.
func (h *Handler) findAwareAt(rootX, rootY int) xproto.Window {
	child, ok := h.C.ChildAt(h.C.Root, rootX, rootY)
	if !ok || child == 0 {
		return 0
	}
	var last xproto.Window
	for child != 0 {
		if h.isAware(child) {
			last = child
		}
		reply, err := xproto.TranslateCoordinates(h.C.X, h.C.Root, child,
			int16(rootX), int16(rootY)).Reply()
		if err != nil {
			break
		}
		child = reply.Child
	}
	return last
}

// isAware probes (through the cache) for the XdndAware property.
func (h *Handler) isAware(win xproto.Window) bool {
	if v, ok := h.aware.Get(win); ok {
		e := v.(awareEntry)
		if time.Since(e.when) < awareTTL {
			return e.aware
		}
	}
	reply, err := xproto.GetProperty(h.C.X, false, win, h.C.Atom("XdndAware"),
		xproto.AtomAtom, 0, 1).Reply()
	aware := err == nil && reply.ValueLen > 0
	h.aware.Add(win, awareEntry{aware: aware, when: time.Now()})
	return aware
}

func (h *Handler) sendEnter(target xproto.Window) {
	var data [5]uint32
	data[0] = uint32(h.Proxy)
	data[1] = Version << 24
	data[2] = uint32(h.C.Atom("text/uri-list"))
	h.sendMessage(target, "XdndEnter", data)
}

func (h *Handler) sendPosition(rootX, rootY int) {
	var data [5]uint32
	data[0] = uint32(h.Proxy)
	data[2] = uint32(rootX)<<16 | uint32(uint16(rootY))
	data[3] = uint32(xproto.TimeCurrentTime)
	data[4] = uint32(h.C.Atom("XdndActionCopy"))
	h.sendMessage(h.target, "XdndPosition", data)
}

func (h *Handler) sendLeave(target xproto.Window) {
	var data [5]uint32
	data[0] = uint32(h.Proxy)
	h.sendMessage(target, "XdndLeave", data)
}

func (h *Handler) sendDrop() {
	var data [5]uint32
	data[0] = uint32(h.Proxy)
	data[2] = uint32(xproto.TimeCurrentTime)
	h.sendMessage(h.target, "XdndDrop", data)
}

func (h *Handler) sendFinished(target xproto.Window, accepted bool) {
	var data [5]uint32
	data[0] = uint32(h.Proxy)
	if accepted {
		data[1] = 1
		data[2] = uint32(h.C.Atom("XdndActionCopy"))
	}
	h.sendMessage(target, "XdndFinished", data)
}

func (h *Handler) sendStatus(target xproto.Window, accept bool) {
	var data [5]uint32
	data[0] = uint32(h.Proxy)
	if accept {
		data[1] = 1
		data[4] = uint32(h.C.Atom("XdndActionCopy"))
	}
	h.sendMessage(target, "XdndStatus", data)
}

func (h *Handler) sendMessage(target xproto.Window, typ string, data [5]uint32) {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: target,
		Type:   h.C.Atom(typ),
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}
	xproto.SendEvent(h.C.X, false, target, xproto.EventMaskNoEvent,
		string(ev.Bytes()))
}

// --- target side -----------------------------------------------------

// HandleClientMessage dispatches the XDND message atoms. Returns false
// for messages that aren't XDND at all.
func (h *Handler) HandleClientMessage(ev xproto.ClientMessageEvent) bool {
	switch ev.Type {
	case h.C.Atom("XdndEnter"):
		h.onEnter(ev)
	case h.C.Atom("XdndPosition"):
		h.onPosition(ev)
	case h.C.Atom("XdndLeave"):
		h.offerSource = 0
		h.offerTypes = nil
	case h.C.Atom("XdndDrop"):
		h.onDrop(ev)
	case h.C.Atom("XdndStatus"):
		h.targetAccepted = len(ev.Data.Data32) > 1 && ev.Data.Data32[1]&1 != 0
	case h.C.Atom("XdndFinished"):
		h.dragging = false
		h.sourcePaths = nil
		h.target = 0
	default:
		return false
	}
	return true
}

func (h *Handler) onEnter(ev xproto.ClientMessageEvent) {
	d := ev.Data.Data32
	h.offerSource = xproto.Window(d[0])
	h.offerTypes = h.offerTypes[:0]
	for _, raw := range d[2:] {
		if raw != 0 {
			h.offerTypes = append(h.offerTypes, xproto.Atom(raw))
		}
	}
	if d[1]&1 != 0 {
		// More than three types: the full list lives in XdndTypeList.
		if atoms, err := h.C.PropAtoms(h.offerSource, "XdndTypeList"); err == nil {
			h.offerTypes = atoms
		}
	}
}

// acceptable reports whether the offer carries a type we take.
func (h *Handler) acceptable() bool {
	for _, a := range h.offerTypes {
		switch h.C.AtomName(a) {
		case "text/uri-list", "text/plain":
			return true
		}
	}
	return false
}

func (h *Handler) onPosition(ev xproto.ClientMessageEvent) {
	d := ev.Data.Data32
	h.dropX = int(d[2] >> 16)
	h.dropY = int(d[2] & 0xFFFF)
	h.dropTime = xproto.Timestamp(d[3])
	h.sendStatus(xproto.Window(d[0]), h.acceptable())
}

func (h *Handler) onDrop(ev xproto.ClientMessageEvent) {
	if h.offerSource == 0 || !h.acceptable() {
		h.sendFinished(xproto.Window(ev.Data.Data32[0]), false)
		return
	}
	t := h.dropTime
	if t == 0 {
		t = xproto.TimeCurrentTime
	}
	xproto.ConvertSelection(h.C.X, h.Proxy, h.C.Atom("XdndSelection"),
		h.C.Atom("text/uri-list"), h.C.Atom("AMIWB_DND_DATA"), t)
}

// HandleSelectionNotify completes a target-side transfer: read the
// property, parse the URI list, drop the files, send XdndFinished.
func (h *Handler) HandleSelectionNotify(ev xproto.SelectionNotifyEvent) {
	if ev.Requestor != h.Proxy || ev.Selection != h.C.Atom("XdndSelection") {
		return
	}
	src := h.offerSource
	h.offerSource = 0
	if ev.Property == xproto.AtomNone {
		if src != 0 {
			h.sendFinished(src, false)
		}
		return
	}
	raw, err := h.C.PropStr(h.Proxy, "AMIWB_DND_DATA")
	h.C.DeleteProp(h.Proxy, "AMIWB_DND_DATA")
	if err != nil {
		if src != 0 {
			h.sendFinished(src, false)
		}
		return
	}

	paths := ParseURIList(raw)
	if len(paths) > 0 && h.OnDrop != nil {
		h.OnDrop(paths, h.dropX, h.dropY)
	}
	if src != 0 {
		h.sendFinished(src, true)
	}
	log.Debugf("xdnd drop: %d file(s) at %d,%d", len(paths), h.dropX, h.dropY)
}

// HandleSelectionRequest serves our side of a source drag: another app
// asked for the dragged data.
func (h *Handler) HandleSelectionRequest(ev xproto.SelectionRequestEvent) bool {
	if ev.Selection != h.C.Atom("XdndSelection") {
		return false
	}
	c := h.C

	switch ev.Target {
	case c.Atom("TARGETS"):
		c.ChangeProp32(ev.Requestor, c.AtomName(ev.Property), "ATOM",
			uint32(c.Atom("TARGETS")), uint32(c.Atom("text/uri-list")))
	case c.Atom("text/uri-list"):
		xproto.ChangeProperty(c.X, xproto.PropModeReplace, ev.Requestor,
			ev.Property, ev.Target, 8,
			uint32(len(h.uriList())), []byte(h.uriList()))
	default:
		h.notifySelection(ev, xproto.AtomNone)
		return true
	}
	h.notifySelection(ev, ev.Property)
	return true
}

func (h *Handler) notifySelection(req xproto.SelectionRequestEvent, prop xproto.Atom) {
	ev := xproto.SelectionNotifyEvent{
		Time:      req.Time,
		Requestor: req.Requestor,
		Selection: req.Selection,
		Target:    req.Target,
		Property:  prop,
	}
	xproto.SendEvent(h.C.X, false, req.Requestor, xproto.EventMaskNoEvent,
		string(ev.Bytes()))
}

// uriList renders the dragged paths as a CRLF-terminated text/uri-list.
func (h *Handler) uriList() string {
	var b strings.Builder
	for _, p := range h.sourcePaths {
		b.WriteString("file://")
		b.WriteString(p)
		b.WriteString("\r\n")
	}
	return b.String()
}

// ParseURIList extracts local paths from a text/uri-list payload. Only
// file:// URIs count; comment lines (#) and foreign schemes are skipped.
// Lines may end CRLF or bare LF.
func ParseURIList(data string) []string {
	var paths []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSuffix(line, "\r")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "file://") {
			continue
		}
		p := strings.TrimPrefix(line, "file://")
		// file://host/path is legal; strip a host component.
		if !strings.HasPrefix(p, "/") {
			if i := strings.IndexByte(p, '/'); i >= 0 {
				p = p[i:]
			} else {
				continue
			}
		}
		paths = append(paths, unescapeURI(p))
	}
	return paths
}

// unescapeURI decodes %XX escapes; malformed escapes pass through as-is.
func unescapeURI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if ok1 && ok2 {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
