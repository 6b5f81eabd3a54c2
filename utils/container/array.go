package container

// IncrementalArray 增量数组，支持延迟追加元素的有序数组
// 功能：维护按登记顺序排列的元素，新增元素在Prepare时统一追加到末尾
// 说明：遍历Data期间调用Add不会影响本轮遍历，保证调度顺序稳定
type IncrementalArray[T any] struct {
	data []T // 主数据数组
	add  []T // 待添加的元素列表
}

// NewIncrementalArray 创建增量数组
func NewIncrementalArray[T any]() *IncrementalArray[T] {
	return &IncrementalArray[T]{
		data: make([]T, 0),
		add:  make([]T, 0),
	}
}

// Len 获取当前数组长度（不含待添加的元素）
func (a *IncrementalArray[T]) Len() int {
	return len(a.data)
}

// Data 获取当前已生效的数据
func (a *IncrementalArray[T]) Data() []T {
	return a.data
}

// Add 增加元素（等到Prepare时才会真正增加）
func (a *IncrementalArray[T]) Add(value T) {
	a.add = append(a.add, value)
}

// Pending 待添加元素数量
func (a *IncrementalArray[T]) Pending() int {
	return len(a.add)
}

// Prepare 执行增量操作
// 功能：按Add的先后顺序将待添加元素追加到主数组末尾
func (a *IncrementalArray[T]) Prepare() {
	if len(a.add) == 0 {
		return
	}
	a.data = append(a.data, a.add...)
	a.add = []T{}
}
