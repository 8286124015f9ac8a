package state

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/easelkit/easel/layer"
)

// The wire format for actions is a JSON envelope:
//
//	{"type": "layerTransformed", "payload": {...}}
//
// Collaboration peers replay decoded actions through DispatchRemote.
// Actions carrying live bitmaps (AddLayer, ReplaceLayerContent) inline
// their raster content as PNG proxies so a peer that has never seen the
// asset can still hydrate the layer.

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type addLayerWire struct {
	Layer LayerRecord `json:"layer"`
	Index int         `json:"index"`
}

type replaceContentWire struct {
	ID            string  `json:"id"`
	Proxy         string  `json:"proxy"`
	ContentFrame  [4]int  `json:"contentFrame"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Size          float64 `json:"size"`
	MarkOptimized bool    `json:"markOptimized,omitempty"`
}

type setBackgroundWire struct {
	Hash   string  `json:"hash"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// actionName returns the stable wire identifier for an action.
func actionName(a Action) string {
	switch a.(type) {
	case AddLayer:
		return "addLayer"
	case DeleteLayer:
		return "deleteLayer"
	case DuplicateLayer:
		return "duplicateLayer"
	case SelectLayer:
		return "selectLayer"
	case LayerTransformed:
		return "layerTransformed"
	case FinalizeGesture:
		return "finalizeGesture"
	case SetLayerEffects:
		return "setLayerEffects"
	case SetLayerLocked:
		return "setLayerLocked"
	case ReorderLayer:
		return "reorderLayer"
	case SetText:
		return "setText"
	case SetTextStyle:
		return "setTextStyle"
	case ReplaceLayerContent:
		return "replaceLayerContent"
	case ContentEdited:
		return "contentEdited"
	case SetBackground:
		return "setBackground"
	case SetBackgroundAdjust:
		return "setBackgroundAdjust"
	case RotateProject:
		return "rotateProject"
	case FlipBackground:
		return "flipBackground"
	case ClearProject:
		return "clearProject"
	case RestoreProject:
		return "restoreProject"
	default:
		return "unknown"
	}
}

// EncodeAction serializes an action for the collaboration channel.
func EncodeAction(a Action) ([]byte, error) {
	var payload any = a

	switch act := a.(type) {
	case AddLayer:
		payload = addLayerWire{Layer: RecordFromLayer(act.Layer), Index: act.Index}
	case ReplaceLayerContent:
		proxy := ""
		if act.Mipmaps != nil {
			p, err := EncodePixmapPNG(act.Mipmaps.Base())
			if err != nil {
				return nil, err
			}
			proxy = p
		}
		payload = replaceContentWire{
			ID:    act.ID,
			Proxy: proxy,
			ContentFrame: [4]int{
				act.ContentFrame.Min.X, act.ContentFrame.Min.Y,
				act.ContentFrame.Max.X, act.ContentFrame.Max.Y,
			},
			X:             act.X,
			Y:             act.Y,
			Size:          act.Size,
			MarkOptimized: act.MarkOptimized,
		}
	case SetBackground:
		// Peers fetch the background by hash; only metadata travels.
		payload = setBackgroundWire{Hash: act.Hash, Width: act.Width, Height: act.Height}
	case RestoreProject:
		payload = Snapshot(act.Canvas)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", actionName(a), err)
	}
	return json.Marshal(envelope{Type: actionName(a), Payload: raw})
}

// DecodeAction parses a wire envelope back into an action.
func DecodeAction(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	decode := func(v any) error {
		if err := json.Unmarshal(env.Payload, v); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return nil
	}

	switch env.Type {
	case "addLayer":
		var w addLayerWire
		if err := decode(&w); err != nil {
			return nil, err
		}
		l, err := LayerFromRecord(w.Layer)
		if err != nil {
			return nil, fmt.Errorf("decode addLayer: %w", err)
		}
		// Remote adds are fresh layers, not storage restores: let the
		// entrance animation play.
		l.Restored = false
		return AddLayer{Layer: l, Index: w.Index}, nil

	case "deleteLayer":
		var a DeleteLayer
		return a, decode(&a)
	case "duplicateLayer":
		var a DuplicateLayer
		return a, decode(&a)
	case "selectLayer":
		var a SelectLayer
		return a, decode(&a)
	case "layerTransformed":
		var a LayerTransformed
		return a, decode(&a)
	case "finalizeGesture":
		var a FinalizeGesture
		return a, decode(&a)
	case "setLayerEffects":
		var a SetLayerEffects
		return a, decode(&a)
	case "setLayerLocked":
		var a SetLayerLocked
		return a, decode(&a)
	case "reorderLayer":
		var a ReorderLayer
		return a, decode(&a)
	case "setText":
		var a SetText
		return a, decode(&a)
	case "setTextStyle":
		var a SetTextStyle
		return a, decode(&a)

	case "replaceLayerContent":
		var w replaceContentWire
		if err := decode(&w); err != nil {
			return nil, err
		}
		a := ReplaceLayerContent{
			ID: w.ID,
			ContentFrame: image.Rect(
				w.ContentFrame[0], w.ContentFrame[1],
				w.ContentFrame[2], w.ContentFrame[3],
			),
			X:             w.X,
			Y:             w.Y,
			Size:          w.Size,
			MarkOptimized: w.MarkOptimized,
		}
		if w.Proxy != "" {
			pm, err := DecodePixmapPNG(w.Proxy)
			if err != nil {
				return nil, fmt.Errorf("decode replaceLayerContent: %w", err)
			}
			a.Mipmaps = layer.BuildChain(pm)
		}
		return a, nil

	case "contentEdited":
		var a ContentEdited
		return a, decode(&a)

	case "setBackground":
		var w setBackgroundWire
		if err := decode(&w); err != nil {
			return nil, err
		}
		// The live bitmap arrives later via an async asset fetch keyed
		// by the hash; the reducer applies metadata immediately.
		return SetBackground{Hash: w.Hash, Width: w.Width, Height: w.Height}, nil

	case "setBackgroundAdjust":
		var a SetBackgroundAdjust
		return a, decode(&a)
	case "rotateProject":
		return RotateProject{}, nil
	case "flipBackground":
		return FlipBackground{}, nil
	case "clearProject":
		return ClearProject{}, nil

	case "restoreProject":
		var st ProjectState
		if err := decode(&st); err != nil {
			return nil, err
		}
		return RestoreProject{Canvas: RestoreCanvas(st)}, nil

	default:
		return nil, fmt.Errorf("%q: %w", env.Type, ErrUnknownAction)
	}
}
