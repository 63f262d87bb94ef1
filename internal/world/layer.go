package world

// BlockLayer определяет слой клетки внутри чанка.
//
// 0 – LayerBackground: задний слой, самостоятельная цель для установки и разрушения;
// 1 – LayerForeground: передний слой, по нему считаются коллизии и свет.
type BlockLayer uint8

const (
	LayerBackground BlockLayer = iota
	LayerForeground

	MaxLayers // всегда последний: количество слоев
)

func (l BlockLayer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerForeground:
		return "foreground"
	}
	return "unknown"
}
