package era5

import (
	"fmt"
	"strings"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/surge-forcing/internal/domain"
)

// valueType maps a NetCDF type onto the domain storage types.
func valueType(t netcdf.Type) domain.ValueType {
	switch t {
	case netcdf.DOUBLE:
		return domain.TypeFloat64
	case netcdf.FLOAT:
		return domain.TypeFloat32
	case netcdf.INT64:
		return domain.TypeInt64
	case netcdf.INT:
		return domain.TypeInt32
	case netcdf.SHORT:
		return domain.TypeInt16
	case netcdf.BYTE:
		return domain.TypeInt8
	case netcdf.CHAR:
		return domain.TypeText
	default:
		return domain.TypeUnknown
	}
}

// ncType is the inverse of valueType.
func ncType(t domain.ValueType) (netcdf.Type, error) {
	switch t {
	case domain.TypeFloat64:
		return netcdf.DOUBLE, nil
	case domain.TypeFloat32:
		return netcdf.FLOAT, nil
	case domain.TypeInt64:
		return netcdf.INT64, nil
	case domain.TypeInt32:
		return netcdf.INT, nil
	case domain.TypeInt16:
		return netcdf.SHORT, nil
	case domain.TypeInt8:
		return netcdf.BYTE, nil
	case domain.TypeText:
		return netcdf.CHAR, nil
	default:
		return 0, fmt.Errorf("unsupported value type: %s", t)
	}
}

// varLen returns the number of elements of v and its dimension lengths.
func varLen(v netcdf.Var) (int, []int, error) {
	dims, err := v.Dims()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	shape := make([]int, len(dims))
	n := 1
	for i, d := range dims {
		l, err := d.Len()
		if err != nil {
			return 0, nil, fmt.Errorf("failed to get dimension length: %w", err)
		}
		shape[i] = int(l)
		n *= int(l)
	}
	return n, shape, nil
}

// readValues reads every element of a numeric variable as float64.
//
//nolint:gocyclo // One branch per NetCDF numeric type.
func readValues(v netcdf.Var) ([]float64, domain.ValueType, error) {
	n, _, err := varLen(v)
	if err != nil {
		return nil, domain.TypeUnknown, err
	}
	t, err := v.Type()
	if err != nil {
		return nil, domain.TypeUnknown, fmt.Errorf("failed to get var type: %w", err)
	}

	out := make([]float64, n)
	switch t {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64s(out); err != nil {
			return nil, 0, err
		}
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, 0, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT64:
		tmp := make([]int64, n)
		if err := v.ReadInt64s(tmp); err != nil {
			return nil, 0, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT:
		tmp := make([]int32, n)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, 0, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.SHORT:
		tmp := make([]int16, n)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, 0, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.BYTE:
		tmp := make([]int8, n)
		if err := v.ReadInt8s(tmp); err != nil {
			return nil, 0, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	default:
		return nil, valueType(t), fmt.Errorf("unsupported var type: %v", t)
	}
	return out, valueType(t), nil
}

// readTimeValues reads a time axis, keeping INT64 values exact.
func readTimeValues(v netcdf.Var) ([]float64, []int64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get var type: %w", err)
	}
	if t == netcdf.INT64 {
		n, _, err := varLen(v)
		if err != nil {
			return nil, nil, err
		}
		raw := make([]int64, n)
		if err := v.ReadInt64s(raw); err != nil {
			return nil, nil, err
		}
		return nil, raw, nil
	}
	values, _, err := readValues(v)
	return values, nil, err
}

// writeValues writes data converted to the given storage type. NaN values
// must already be replaced for integer types.
func writeValues(v netcdf.Var, t domain.ValueType, data []float64) error {
	switch t {
	case domain.TypeFloat64:
		return v.WriteFloat64s(data)
	case domain.TypeFloat32:
		tmp := make([]float32, len(data))
		for i, x := range data {
			tmp[i] = float32(x)
		}
		return v.WriteFloat32s(tmp)
	case domain.TypeInt64:
		tmp := make([]int64, len(data))
		for i, x := range data {
			tmp[i] = int64(x)
		}
		return v.WriteInt64s(tmp)
	case domain.TypeInt32:
		tmp := make([]int32, len(data))
		for i, x := range data {
			tmp[i] = int32(x)
		}
		return v.WriteInt32s(tmp)
	case domain.TypeInt16:
		tmp := make([]int16, len(data))
		for i, x := range data {
			tmp[i] = int16(x)
		}
		return v.WriteInt16s(tmp)
	case domain.TypeInt8:
		tmp := make([]int8, len(data))
		for i, x := range data {
			tmp[i] = int8(x)
		}
		return v.WriteInt8s(tmp)
	default:
		return fmt.Errorf("unsupported value type: %s", t)
	}
}

// readAttr decodes a single attribute. ok is false for types the store does
// not carry.
//
//nolint:gocyclo // One branch per NetCDF attribute type.
func readAttr(a netcdf.Attr) (domain.Attribute, bool, error) {
	t, err := a.Type()
	if err != nil {
		return domain.Attribute{}, false, fmt.Errorf("failed to get attribute type: %w", err)
	}
	n, err := a.Len()
	if err != nil {
		return domain.Attribute{}, false, fmt.Errorf("failed to get attribute length: %w", err)
	}
	attr := domain.Attribute{Name: a.Name(), Type: valueType(t)}

	switch t {
	case netcdf.CHAR:
		buf := make([]byte, n)
		if err := a.ReadBytes(buf); err != nil {
			return attr, false, err
		}
		attr.Text = strings.TrimRight(string(buf), "\x00")
		return attr, true, nil
	case netcdf.DOUBLE:
		attr.Values = make([]float64, n)
		if err := a.ReadFloat64s(attr.Values); err != nil {
			return attr, false, err
		}
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := a.ReadFloat32s(tmp); err != nil {
			return attr, false, err
		}
		for _, x := range tmp {
			attr.Values = append(attr.Values, float64(x))
		}
	case netcdf.INT64:
		tmp := make([]int64, n)
		if err := a.ReadInt64s(tmp); err != nil {
			return attr, false, err
		}
		for _, x := range tmp {
			attr.Values = append(attr.Values, float64(x))
		}
	case netcdf.INT:
		tmp := make([]int32, n)
		if err := a.ReadInt32s(tmp); err != nil {
			return attr, false, err
		}
		for _, x := range tmp {
			attr.Values = append(attr.Values, float64(x))
		}
	case netcdf.SHORT:
		tmp := make([]int16, n)
		if err := a.ReadInt16s(tmp); err != nil {
			return attr, false, err
		}
		for _, x := range tmp {
			attr.Values = append(attr.Values, float64(x))
		}
	case netcdf.BYTE:
		tmp := make([]int8, n)
		if err := a.ReadInt8s(tmp); err != nil {
			return attr, false, err
		}
		for _, x := range tmp {
			attr.Values = append(attr.Values, float64(x))
		}
	default:
		return attr, false, nil
	}
	return attr, true, nil
}

// attrLister is implemented by netcdf.Var and netcdf.Dataset.
type attrLister interface {
	NAttrs() (int, error)
	AttrN(n int) (netcdf.Attr, error)
}

// readAttrs reads every supported attribute in file order. Names of skipped
// attributes are returned separately.
func readAttrs(src attrLister) (domain.Attributes, []string, error) {
	n, err := src.NAttrs()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count attributes: %w", err)
	}
	var (
		attrs   domain.Attributes
		skipped []string
	)
	for i := 0; i < n; i++ {
		a, err := src.AttrN(i)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get attribute %d: %w", i, err)
		}
		attr, ok, err := readAttr(a)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read attribute %s: %w", a.Name(), err)
		}
		if !ok {
			skipped = append(skipped, a.Name())
			continue
		}
		attrs = append(attrs, attr)
	}
	return attrs, skipped, nil
}

// writeAttrs writes attrs through get, which returns the named attribute
// handle of a variable or the dataset.
func writeAttrs(get func(string) netcdf.Attr, attrs domain.Attributes) error {
	for _, attr := range attrs {
		if err := writeAttr(get(attr.Name), attr); err != nil {
			return fmt.Errorf("failed to write attribute %s: %w", attr.Name, err)
		}
	}
	return nil
}

func writeAttr(a netcdf.Attr, attr domain.Attribute) error {
	switch attr.Type {
	case domain.TypeText:
		return a.WriteBytes([]byte(attr.Text))
	case domain.TypeFloat64:
		return a.WriteFloat64s(attr.Values)
	case domain.TypeFloat32:
		tmp := make([]float32, len(attr.Values))
		for i, x := range attr.Values {
			tmp[i] = float32(x)
		}
		return a.WriteFloat32s(tmp)
	case domain.TypeInt64:
		tmp := make([]int64, len(attr.Values))
		for i, x := range attr.Values {
			tmp[i] = int64(x)
		}
		return a.WriteInt64s(tmp)
	case domain.TypeInt32:
		tmp := make([]int32, len(attr.Values))
		for i, x := range attr.Values {
			tmp[i] = int32(x)
		}
		return a.WriteInt32s(tmp)
	case domain.TypeInt16:
		tmp := make([]int16, len(attr.Values))
		for i, x := range attr.Values {
			tmp[i] = int16(x)
		}
		return a.WriteInt16s(tmp)
	case domain.TypeInt8:
		tmp := make([]int8, len(attr.Values))
		for i, x := range attr.Values {
			tmp[i] = int8(x)
		}
		return a.WriteInt8s(tmp)
	default:
		return fmt.Errorf("unsupported attribute type: %s", attr.Type)
	}
}
