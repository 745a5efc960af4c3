package entity

// Nombres de secuencias conocidas.
const (
	SequenceInvoice = "invoice"
	SequenceVendor  = "vendor"
)

// SequenceCounter contador monotónico por nombre; se crea en el primer incremento.
type SequenceCounter struct {
	Name  string
	Value int64
}
